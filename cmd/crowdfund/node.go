package main

import (
	"encoding/json"
	"fmt"
	"path/filepath"

	logging "github.com/ipfs/go-log/v2"
	"github.com/urfave/cli/v2"
	"go.uber.org/multierr"

	"github.com/crowdfund-org/crowdfund-go-base/config"
	"github.com/crowdfund-org/crowdfund-go-base/state"
	"github.com/crowdfund-org/crowdfund-go-base/txsystem"
	"github.com/crowdfund-org/crowdfund-go-base/txsystem/crowdfund"
	"github.com/crowdfund-org/crowdfund-go-base/types"
)

// node is the config, the record store and the executor of one command invocation.
type node struct {
	cfg   *config.Config
	store *state.BoltStore
	exec  *txsystem.Executor
	proc  *crowdfund.Processor
}

func configPath(cctx *cli.Context) string {
	return filepath.Join(cctx.String(flagHome), config.DefaultConfigFile)
}

func openNode(cctx *cli.Context) (*node, error) {
	cfg, err := config.LoadConfig(configPath(cctx))
	if err != nil {
		return nil, fmt.Errorf("%w (run \"crowdfund init\" first?)", err)
	}
	lvl, err := logging.LevelFromString(cfg.LogLevel)
	if err != nil {
		return nil, err
	}
	logging.SetAllLoggers(lvl)

	store, err := state.OpenBoltStore(cfg.StatePath())
	if err != nil {
		return nil, err
	}
	proc := crowdfund.NewProcessor(cfg.ProgramID, cfg.Rent)
	exec, err := txsystem.NewExecutor(store, proc)
	if err != nil {
		return nil, multierr.Append(err, store.Close())
	}
	log.Debugf("opened record store %s", cfg.StatePath())
	return &node{cfg: cfg, store: store, exec: exec, proc: proc}, nil
}

func (n *node) Close() error {
	return n.store.Close()
}

// withNode opens the node for the action and closes it when the action returns.
func withNode(action func(cctx *cli.Context, n *node) error) cli.ActionFunc {
	return func(cctx *cli.Context) (err error) {
		n, err := openNode(cctx)
		if err != nil {
			return err
		}
		defer func() { err = multierr.Append(err, n.Close()) }()
		return action(cctx, n)
	}
}

/*
execute runs the crowdfund operation and prints the events it emitted. Program
errors are turned into cli exit errors carrying the exit code of the program.
*/
func (n *node) execute(cctx *cli.Context, op crowdfund.Operation, accounts ...txsystem.AccountMeta) error {
	events, err := n.exec.Execute(cctx.Context, &txsystem.Transaction{
		ProgramID: n.cfg.ProgramID,
		Accounts:  accounts,
		Data:      crowdfund.EncodeOperation(op),
	})
	if err != nil {
		code := crowdfund.ToExitCode(err)
		if code == crowdfund.ExitUnknown {
			return err
		}
		return cli.Exit(fmt.Sprintf("%s failed (%s): %v", op.Name(), code, err), int(code))
	}
	return printEvents(cctx, events)
}

type eventView struct {
	ID       string `json:"id"`
	Sequence uint64 `json:"sequence"`
	Program  string `json:"program"`
	Kind     string `json:"kind"`
	Payload  any    `json:"payload"`
}

func printEvents(cctx *cli.Context, events []*types.Event) error {
	views := make([]eventView, 0, len(events))
	for _, ev := range events {
		kind, err := ev.Kind()
		if err != nil {
			return fmt.Errorf("reading event %s kind: %w", ev.ID, err)
		}
		payload, err := crowdfund.DecodeEvent(ev)
		if err != nil {
			// events of other programs are shown raw
			payload = ev.Data
		}
		views = append(views, eventView{
			ID:       ev.ID.String(),
			Sequence: ev.Sequence,
			Program:  ev.Program.String(),
			Kind:     eventKindName(kind),
			Payload:  payload,
		})
	}
	return printJSON(cctx, views)
}

func eventKindName(kind uint64) string {
	switch kind {
	case crowdfund.EventCampaignCreated:
		return "CampaignCreated"
	case crowdfund.EventDonationRecorded:
		return "DonationRecorded"
	case crowdfund.EventWithdrawalRecorded:
		return "WithdrawalRecorded"
	default:
		return fmt.Sprintf("%#x", kind)
	}
}

func printJSON(cctx *cli.Context, v any) error {
	enc := json.NewEncoder(cctx.App.Writer)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
