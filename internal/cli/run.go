package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/halden-bio/catalyst/internal/config"
	"github.com/halden-bio/catalyst/internal/presentation/tui"
	"github.com/halden-bio/catalyst/internal/runtime"
	"github.com/halden-bio/catalyst/pkg/domain"
	"github.com/halden-bio/catalyst/pkg/session"
)

// RunOptions contains all the configuration for the run command.
type RunOptions struct {
	ConfigPath string
	SessionID  string
	Smiles     string
	Receptor   string
	Auto       bool // run every remaining step without prompting
	Fresh      bool // discard any existing session state first
	Debug      bool
}

// RunSession drives one interactive pipeline session in the terminal.
func RunSession(opts RunOptions) error {
	cfg, err := config.Load(opts.ConfigPath)
	if err != nil {
		return err
	}
	logger := createLogger(opts.Debug, cfg.LogLevel)

	if !opts.Auto {
		tui.PrintBanner()
	}

	manager, err := createSessionManager(cfg.Session, logger)
	if err != nil {
		return err
	}
	analyzer := createAnalyzer(cfg.Analysis, logger)
	orch := runtime.NewOrchestrator(analyzer, runtime.WithLogger(logger))

	sigCtx := NewSignalContext(context.Background())
	defer sigCtx.Cancel()

	sessionID := opts.SessionID
	if sessionID == "" {
		sessionID = "default"
	}
	if opts.Fresh {
		if err := manager.Delete(sigCtx, sessionID); err != nil && !errors.Is(err, domain.ErrSessionNotFound) {
			return fmt.Errorf("failed to reset session: %w", err)
		}
	}

	smiles := opts.Smiles
	if smiles == "" {
		smiles = cfg.Inputs.Smiles
	}
	receptor := opts.Receptor
	if receptor == "" {
		receptor = cfg.Inputs.Receptor
	}

	state, err := manager.LoadOrStart(sigCtx, sessionID, smiles, receptor)
	if err != nil {
		return fmt.Errorf("failed to init session: %w", err)
	}
	// A crash mid-call can leave the flag set; no call survives a restart.
	state.Running = false

	printSystemMessage("Session '%s' at step '%s'.", sessionID, domain.StepName(state.ActiveStep))

	w := &wizard{
		manager:   manager,
		orch:      orch,
		state:     state,
		sessionID: sessionID,
		render:    tui.NewRenderer(),
	}

	if opts.Auto {
		return w.runAll(sigCtx)
	}
	return w.loop(sigCtx)
}

// wizard holds the live session of the interactive run command.
type wizard struct {
	manager   *session.Manager
	orch      *runtime.Orchestrator
	state     *domain.State
	sessionID string
	render    func(string) (string, error)
}

func (w *wizard) save(ctx context.Context) error {
	return w.manager.Save(ctx, w.sessionID, w.state)
}

// runAll executes every remaining step front to back.
func (w *wizard) runAll(ctx context.Context) error {
	for {
		if w.state.Result(domain.LastStep()) != nil {
			printSystemMessage("Pipeline complete.")
			return w.save(ctx)
		}
		if err := w.executeActive(ctx); err != nil {
			return err
		}
	}
}

func (w *wizard) executeActive(ctx context.Context) error {
	step := w.state.ActiveStep
	printSystemMessage("Running '%s'...", domain.StepName(step))

	err := w.orch.Execute(ctx, w.state)
	if saveErr := w.save(ctx); saveErr != nil {
		return saveErr
	}
	if err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		fmt.Printf("Error: %s\n", w.state.LastError)
		return err
	}

	fmt.Print(tui.FormatResult(w.render, step, w.state.Result(step)))
	return nil
}

// loop reads commands until quit or interrupt.
func (w *wizard) loop(ctx context.Context) error {
	w.printSteps()
	fmt.Println("Commands: run | goto <step> | inputs <smiles> [receptor] | show [step] | steps | quit")

	scanner := bufio.NewScanner(os.Stdin)
	for {
		if ctx.Err() != nil {
			fmt.Println()
			printSystemMessage("Interrupted at '%s'.", domain.StepName(w.state.ActiveStep))
			return nil
		}
		fmt.Printf("[%s] > ", w.state.ActiveStep)
		if !scanner.Scan() {
			return scanner.Err()
		}

		fields := strings.Fields(scanner.Text())
		if len(fields) == 0 {
			continue
		}

		switch fields[0] {
		case "run":
			// Errors are already printed; the session continues.
			_ = w.executeActive(ctx)

		case "goto":
			if len(fields) < 2 {
				fmt.Println("usage: goto <step>")
				continue
			}
			if err := w.orch.SelectStep(w.state, domain.StepID(fields[1])); err != nil {
				fmt.Printf("Error: %v\n", err)
				continue
			}
			if err := w.save(ctx); err != nil {
				return err
			}

		case "inputs":
			if len(fields) < 2 {
				fmt.Println("usage: inputs <smiles> [receptor]")
				continue
			}
			receptor := w.state.ReceptorID
			if len(fields) > 2 {
				receptor = fields[2]
			}
			w.orch.SetInputs(w.state, fields[1], receptor)
			if err := w.save(ctx); err != nil {
				return err
			}
			printSystemMessage("Inputs updated.")

		case "show":
			step := w.state.ActiveStep
			if len(fields) > 1 {
				step = domain.StepID(fields[1])
			}
			fmt.Print(tui.FormatResult(w.render, step, w.state.Result(step)))

		case "steps":
			w.printSteps()

		case "quit", "exit":
			printSystemMessage("Session '%s' saved.", w.sessionID)
			return w.save(ctx)

		default:
			fmt.Printf("unknown command %q\n", fields[0])
		}
	}
}

func (w *wizard) printSteps() {
	for i, step := range domain.Catalog() {
		marker := " "
		if w.state.Result(step.ID) != nil {
			marker = "x"
		}
		active := "  "
		if step.ID == w.state.ActiveStep {
			active = "->"
		}
		fmt.Printf(" %s [%s] %2d. %-20s %s\n", active, marker, i+1, step.ID, step.Name)
	}
}
