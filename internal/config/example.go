package config

// Example is the plan written by `provision init`: a fresh Ubuntu desktop
// bootstrap. Personal details live in vars.
const Example = `# provision plan: steps run top to bottom; the first failed required step
# aborts the run. Mark a step optional: true to keep going when it fails.
vars:
  name: Your Name
  email: you@example.com

notes:
  - "Restart your shell or run: source ~/.zshrc"
  - Add your SSH public key to GitHub if needed (it was printed above).

steps:
  - name: Install apt packages
    commands:
      - sudo apt update
      - >-
        sudo apt install -y chrome-gnome-shell curl git vim zsh fish
        fonts-powerline xfce4-terminal nodejs npm locate gnome-tweaks
        gnome-shell-extensions libfuse2t64 build-essential ffmpeg cmake ranger

  - name: Update locate DB
    commands: sudo updatedb

  - name: Create SSH key (ed25519)
    skip_if: ~/.ssh/id_ed25519
    commands:
      - ssh-keygen -t ed25519 -C "{{ .email }}" -f ~/.ssh/id_ed25519 -N ""

  - name: Start ssh-agent and add key
    commands:
      - eval "$(ssh-agent -s)" && ssh-add ~/.ssh/id_ed25519

  - name: Show SSH public key
    show_output: true
    commands: cat ~/.ssh/id_ed25519.pub

  - name: Git config (name, email, editor)
    commands:
      - git config --global user.name "{{ .name }}"
      - git config --global user.email "{{ .email }}"
      - git config --global core.editor "vim"
      - git config --global init.defaultBranch main

  - name: Install Nerd Font (DroidSansMono)
    skip_if: ~/.local/share/fonts/DroidSansMNerdFont-Regular.otf
    commands:
      - mkdir -p ~/.local/share/fonts
      - cd ~/.local/share/fonts && curl -fLO https://github.com/ryanoasis/nerd-fonts/raw/HEAD/patched-fonts/DroidSansMono/DroidSansMNerdFont-Regular.otf

  - name: Install Oh My Zsh
    skip_if: ~/.oh-my-zsh
    commands:
      - RUNZSH=no sh -c "$(curl -fsSL https://raw.githubusercontent.com/ohmyzsh/ohmyzsh/master/tools/install.sh)"

  - name: Install Oh My Fish
    optional: true
    commands:
      - curl -sS https://raw.githubusercontent.com/oh-my-fish/oh-my-fish/master/bin/install | fish

  - name: Install Fish theme (bobthefish)
    optional: true
    commands:
      - fish -c 'omf install bobthefish'

  - name: Configure Fish theme (nerd fonts)
    action:
      append:
        path: ~/.config/fish/config.fish
        unless_contains: theme_powerline_fonts
        text: |
          set -g theme_powerline_fonts no
          set -g theme_nerd_fonts yes

  - name: Clone update-cursor and move to /opt
    skip_if: /opt/update-cursor
    commands:
      - cd ~ && git clone git@github.com:s0m3OnE47/update-cursor.git
      - sudo mv ~/update-cursor /opt

  - name: Append PATH and autocomplete to ~/.zshrc
    action:
      append:
        path: ~/.zshrc
        text: |
          # Added by provision
          export PATH="$HOME/.local/bin:$PATH"
          export PATH="/opt/update-cursor/bin:$PATH"
          source /opt/zsh-autocomplete/zsh-autocomplete.plugin.zsh

  - name: Run update-cursor
    optional: true
    commands: /opt/update-cursor/bin/update-cursor

  - name: Clone zsh-autocomplete and move to /opt
    skip_if: /opt/zsh-autocomplete
    commands:
      - cd ~ && git clone --depth 1 https://github.com/marlonrichert/zsh-autocomplete.git
      - sudo mv ~/zsh-autocomplete /opt
`
