package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/huh"
	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"

	"github.com/atomikpanda/provision/internal/ageutil"
	"github.com/atomikpanda/provision/internal/audit"
	"github.com/atomikpanda/provision/internal/color"
	"github.com/atomikpanda/provision/internal/config"
	"github.com/atomikpanda/provision/internal/platform"
	"github.com/atomikpanda/provision/internal/runner"
	"github.com/atomikpanda/provision/internal/shell"
	"github.com/atomikpanda/provision/internal/step"
	"github.com/atomikpanda/provision/internal/tags"
)

var (
	planFile string
	dryRun   bool
	verbose  bool
)

func main() {
	color.Init()
	root := buildRoot()
	if err := root.Execute(); err != nil {
		os.Exit(runner.ExitCode(err))
	}
}

func buildRoot() *cobra.Command {
	root := &cobra.Command{
		Use:   "provision",
		Short: "Run an ordered list of machine setup steps",
		Long: `provision runs the steps of a YAML plan top to bottom. Each step is a list
of shell commands or a built-in action, may be skipped by a condition, and
may be marked optional. The first failed required step aborts the run.`,
		SilenceUsage: true,
	}

	root.PersistentFlags().StringVarP(&planFile, "config", "c", config.DefaultFile, "path to plan file")
	root.PersistentFlags().BoolVar(&dryRun, "dry-run", false, "print commands and actions without executing them")
	root.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "show action details and step timings")

	root.AddCommand(
		runCmd(),
		listCmd(),
		checkCmd(),
		initCmd(),
		logCmd(),
		tagCmd(),
		encryptCmd(),
		decryptCmd(),
	)

	return root
}

func loadPlan() (*config.Plan, error) {
	plan, err := config.Load(planFile)
	if err != nil {
		return nil, fmt.Errorf("load plan %q: %w", planFile, err)
	}
	return &plan, nil
}

// session holds everything resolved once per invocation.
type session struct {
	plan     *config.Plan
	userHome string // the invoking user's home; machine tags and history live here
	shell    *shell.Executor
	opts     runner.Options
}

func newSession(plan *config.Plan) (*session, error) {
	userHome, err := platform.HomeDir("")
	if err != nil {
		return nil, err
	}
	home, err := platform.HomeDir(plan.Home)
	if err != nil {
		return nil, err
	}
	extra, err := plan.Environment()
	if err != nil {
		return nil, err
	}
	env := runner.NewEnv(home, extra)
	sh := shell.New(env.Home, env.Vars)

	machine, err := tags.Store{Path: tags.DefaultPath(userHome)}.Machine()
	if err != nil {
		return nil, err
	}
	key, err := resolveKey(plan, env)
	if err != nil && !errors.Is(err, ageutil.ErrNoKey) {
		return nil, err
	}

	return &session{
		plan:     plan,
		userHome: userHome,
		shell:    sh,
		opts: runner.Options{
			Env:     env,
			Shell:   sh,
			Machine: machine,
			OS:      platform.Current(),
			Key:     key,
		},
	}, nil
}

func resolveKey(plan *config.Plan, env runner.Env) (*ageutil.Key, error) {
	identity := plan.Age.Identity
	if identity != "" {
		identity = platform.Expand(plan.Path(identity), env.Home, env.Lookup())
	}
	return ageutil.Resolve(identity, plan.Age.Passphrase, env.Lookup())
}

func (s *session) build(steps []config.Step) ([]step.Step, error) {
	return runner.Build(s.plan, steps, s.opts)
}

// interactive reports whether prompts can be shown.
func interactive() bool {
	if os.Getenv("CI") != "" || os.Getenv("TERM") == "dumb" {
		return false
	}
	return isatty.IsTerminal(os.Stdin.Fd()) || isatty.IsCygwinTerminal(os.Stdin.Fd())
}

// --- run ---------------------------------------------------------------------

func runCmd() *cobra.Command {
	var yes, pick bool

	cmd := &cobra.Command{
		Use:   "run [step...]",
		Short: "Run the plan (all steps if none specified)",
		Example: `  provision run
  provision run "Git config (name, email, editor)"
  provision run --select
  provision run --dry-run`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()
			plan, err := loadPlan()
			if err != nil {
				return err
			}
			selected, err := plan.Select(args)
			if err != nil {
				return err
			}
			if pick {
				if selected, err = pickSteps(selected); err != nil {
					return err
				}
			}
			if len(selected) == 0 {
				fmt.Println("no steps selected")
				return nil
			}
			if !yes && !dryRun && interactive() {
				ok, err := confirmRun(len(selected))
				if err != nil {
					return err
				}
				if !ok {
					fmt.Println("cancelled")
					return nil
				}
			}

			sess, err := newSession(plan)
			if err != nil {
				return err
			}
			steps, err := sess.build(selected)
			if err != nil {
				return err
			}

			r := runner.New(sess.shell, dryRun, verbose)
			r.RunID = audit.NewRunID()
			r.Notes = plan.Notes
			if !dryRun {
				store, err := audit.Open(audit.DefaultPath(sess.userHome))
				if err != nil {
					fmt.Fprintln(os.Stderr, color.Yellow("warning: history disabled: "+err.Error()))
				} else {
					defer store.Close()
					r.Recorder = store
				}
			}

			title := "provision: " + planFile
			if dryRun {
				title += " (dry run)"
			}
			r.Out.Header(title, len(steps))
			_, err = r.Run(ctx, steps)
			return err
		},
	}

	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "do not ask for confirmation")
	cmd.Flags().BoolVar(&pick, "select", false, "choose steps interactively")
	return cmd
}

func confirmRun(n int) (bool, error) {
	var ok bool
	err := huh.NewConfirm().
		Title(fmt.Sprintf("Run %d step(s) from %s?", n, planFile)).
		Affirmative("Run").
		Negative("Cancel").
		Value(&ok).
		Run()
	if errors.Is(err, huh.ErrUserAborted) {
		return false, nil
	}
	return ok, err
}

func pickSteps(steps []config.Step) ([]config.Step, error) {
	names := make([]string, len(steps))
	for i, s := range steps {
		names[i] = s.Name
	}
	var picked []string
	err := huh.NewMultiSelect[string]().
		Title("Steps to run").
		Options(huh.NewOptions(names...)...).
		Value(&picked).
		Run()
	if errors.Is(err, huh.ErrUserAborted) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	want := make(map[string]bool, len(picked))
	for _, n := range picked {
		want[n] = true
	}
	var out []config.Step
	for _, s := range steps {
		if want[s.Name] {
			out = append(out, s)
		}
	}
	return out, nil
}

// --- list --------------------------------------------------------------------

func listCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List the steps defined in the plan",
		RunE: func(cmd *cobra.Command, args []string) error {
			plan, err := loadPlan()
			if err != nil {
				return err
			}
			total := len(plan.Steps)
			for i, s := range plan.Steps {
				fmt.Fprintf(cmd.OutOrStdout(), "%-8s  %-40s  %-8s  %s\n",
					fmt.Sprintf("[%d/%d]", i+1, total), s.Name, s.Mode(), stepFlags(s))
			}
			return nil
		},
	}
}

func stepFlags(s config.Step) string {
	var flags []string
	if s.Optional {
		flags = append(flags, "optional")
	}
	if s.ShowOutput {
		flags = append(flags, "show-output")
	}
	if s.SkipIf != nil {
		flags = append(flags, "skip-if")
	}
	if len(s.OnlyTags) > 0 || len(s.ExcludeTags) > 0 {
		flags = append(flags, "tags")
	}
	if s.Action != nil {
		flags = append(flags, s.Action.Kinds()...)
	}
	return strings.Join(flags, ",")
}

// --- check -------------------------------------------------------------------

func checkCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "check [step...]",
		Short: "Evaluate skip conditions and show which steps would run",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()
			plan, err := loadPlan()
			if err != nil {
				return err
			}
			selected, err := plan.Select(args)
			if err != nil {
				return err
			}
			sess, err := newSession(plan)
			if err != nil {
				return err
			}
			steps, err := sess.build(selected)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			total := len(steps)
			for i, s := range steps {
				pos := fmt.Sprintf("[%d/%d]", i+1, total)
				skip, err := runner.WouldSkip(ctx, s)
				switch {
				case err != nil:
					fmt.Fprintf(out, "%-8s  %-40s  %s\n", pos, s.Meta().Name, color.BoldRed("error: "+err.Error()))
				case skip:
					fmt.Fprintf(out, "%-8s  %-40s  %s\n", pos, s.Meta().Name, color.Dim("skip"))
				default:
					fmt.Fprintf(out, "%-8s  %-40s  %s\n", pos, s.Meta().Name, color.Green("run"))
				}
			}
			return nil
		},
	}
}

// --- init --------------------------------------------------------------------

func initCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "init",
		Short: "Write an example plan to the config path",
		RunE: func(cmd *cobra.Command, args []string) error {
			if _, err := os.Stat(planFile); err == nil {
				return fmt.Errorf("%s already exists", planFile)
			} else if !os.IsNotExist(err) {
				return err
			}
			if err := os.WriteFile(planFile, []byte(config.Example), 0o644); err != nil {
				return fmt.Errorf("write %s: %w", planFile, err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "wrote %s\n", planFile)
			return nil
		},
	}
}

// --- log ---------------------------------------------------------------------

func logCmd() *cobra.Command {
	var (
		stepFilter string
		runFilter  string
		limit      int
	)

	cmd := &cobra.Command{
		Use:   "log",
		Short: "Show the step history",
		RunE: func(cmd *cobra.Command, args []string) error {
			home, err := platform.HomeDir("")
			if err != nil {
				return err
			}
			path := audit.DefaultPath(home)
			store, err := audit.Open(path)
			if err != nil {
				return err
			}
			defer store.Close()

			entries, err := store.Read(context.Background(), audit.Query{Step: stepFilter, RunID: runFilter, Limit: limit})
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if len(entries) == 0 {
				fmt.Fprintln(out, "(no history)")
				return nil
			}

			fmt.Fprintln(out, color.Bold(fmt.Sprintf("%-20s  %-8s  %-8s  %-8s  %s", "TIME", "RUN", "COMMAND", "OUTCOME", "STEP")))
			fmt.Fprintln(out, color.Dim(strings.Repeat("-", 80)))
			for _, e := range entries {
				ts := e.Time.Local().Format(time.DateTime)
				outcome := fmt.Sprintf("%-8s", e.Outcome)
				switch e.Outcome {
				case step.StatusOK.String():
					outcome = color.Green(outcome)
				case step.StatusFailed.String():
					if e.Optional {
						outcome = color.Yellow(outcome)
					} else {
						outcome = color.BoldRed(outcome)
					}
				case step.StatusSkipped.String():
					outcome = color.Dim(outcome)
				}
				fmt.Fprintf(out, "%-20s  %-8s  %-8s  %s  %s\n", ts, shortID(e.RunID), e.Command, outcome, e.Step)
				if verbose && e.Message != "" {
					fmt.Fprintf(out, "%22s%s\n", "", color.Dim(firstLine(e.Message)))
				}
			}
			fmt.Fprintf(out, "\nhistory: %s\n", path)
			return nil
		},
	}

	cmd.Flags().StringVar(&stepFilter, "step", "", "filter history by step name")
	cmd.Flags().StringVar(&runFilter, "run", "", "filter history by run ID")
	cmd.Flags().IntVar(&limit, "limit", 50, "maximum number of entries to show")
	return cmd
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

func firstLine(s string) string {
	line, _, _ := strings.Cut(s, "\n")
	return line
}

// --- tag ---------------------------------------------------------------------

func tagCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "tag",
		Short: "Manage machine tags",
	}

	store := func() (tags.Store, error) {
		home, err := platform.HomeDir("")
		if err != nil {
			return tags.Store{}, err
		}
		return tags.Store{Path: tags.DefaultPath(home)}, nil
	}

	cmd.AddCommand(
		&cobra.Command{
			Use:   "list",
			Short: "Print current machine tags",
			RunE: func(cmd *cobra.Command, args []string) error {
				s, err := store()
				if err != nil {
					return err
				}
				if err := s.EnsureInitialised(); err != nil {
					return err
				}
				cfg, err := s.Load()
				if err != nil {
					return err
				}
				out := cmd.OutOrStdout()
				fmt.Fprintf(out, "machine config: %s\n", s.Path)
				if len(cfg.Tags) == 0 {
					fmt.Fprintln(out, "(no tags)")
					return nil
				}
				for _, t := range cfg.Tags {
					fmt.Fprintf(out, "  - %s\n", t)
				}
				return nil
			},
		},
		&cobra.Command{
			Use:   "add <tag>",
			Short: "Add a tag to this machine",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				s, err := store()
				if err != nil {
					return err
				}
				if err := s.EnsureInitialised(); err != nil {
					return err
				}
				if err := s.Add(args[0]); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "added tag %q\n", args[0])
				return nil
			},
		},
	)
	return cmd
}

// --- encrypt / decrypt -------------------------------------------------------

func encryptCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "encrypt <file>",
		Short: "Encrypt a file with the configured age key (writes <file>.age)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			key, err := keyFromPlan()
			if err != nil {
				return err
			}
			src := args[0]
			dst := ageutil.EncryptedPath(src)
			fmt.Fprintf(cmd.OutOrStdout(), "encrypting %s -> %s\n", src, dst)
			return key.EncryptFile(src, dst)
		},
	}
}

func decryptCmd() *cobra.Command {
	var mode string

	cmd := &cobra.Command{
		Use:   "decrypt <file.age>",
		Short: "Decrypt an age-encrypted file (writes without the .age extension)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			perm, err := strconv.ParseUint(mode, 8, 32)
			if err != nil {
				return fmt.Errorf("--mode %q is not octal", mode)
			}
			key, err := keyFromPlan()
			if err != nil {
				return err
			}
			src := args[0]
			dst := ageutil.PlainPath(src)
			fmt.Fprintf(cmd.OutOrStdout(), "decrypting %s -> %s\n", src, dst)
			return key.DecryptFile(src, dst, os.FileMode(perm))
		},
	}

	cmd.Flags().StringVar(&mode, "mode", "0600", "octal permission bits of the decrypted file")
	return cmd
}

func keyFromPlan() (*ageutil.Key, error) {
	plan, err := loadPlan()
	if err != nil {
		return nil, err
	}
	home, err := platform.HomeDir(plan.Home)
	if err != nil {
		return nil, err
	}
	extra, err := plan.Environment()
	if err != nil {
		return nil, err
	}
	key, err := resolveKey(plan, runner.NewEnv(home, extra))
	if errors.Is(err, ageutil.ErrNoKey) {
		return nil, fmt.Errorf("%w; set age.identity or age.passphrase in %s, or set %s / %s",
			err, planFile, ageutil.EnvIdentity, ageutil.EnvPassphrase)
	}
	return key, err
}
