package main

import (
	"crypto"
	"crypto/rand"
	"errors"
	"fmt"
	"os"

	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/urfave/cli/v2"

	"github.com/crowdfund-org/crowdfund-go-base/config"
	"github.com/crowdfund-org/crowdfund-go-base/state"
	"github.com/crowdfund-org/crowdfund-go-base/txsystem"
	"github.com/crowdfund-org/crowdfund-go-base/txsystem/crowdfund"
	"github.com/crowdfund-org/crowdfund-go-base/types"
	"github.com/crowdfund-org/crowdfund-go-base/util"
)

var initCmd = &cli.Command{
	Name:  "init",
	Usage: "write default config into the home directory",
	Flags: []cli.Flag{
		&cli.StringFlag{Name: "program-id", Usage: "hex encoded program ID of the crowdfund program"},
		&cli.StringFlag{Name: "log-level", Value: "info"},
		&cli.BoolFlag{Name: "force", Usage: "overwrite existing config"},
	},
	Action: func(cctx *cli.Context) error {
		path := configPath(cctx)
		if _, err := os.Stat(path); err == nil && !cctx.Bool("force") {
			return fmt.Errorf("config %s already exists", path)
		}
		cfg := config.DefaultConfig()
		cfg.LogLevel = cctx.String("log-level")
		if s := cctx.String("program-id"); s != "" {
			id, err := types.HexToAddress(s)
			if err != nil {
				return fmt.Errorf("program-id: %w", err)
			}
			cfg.ProgramID = id
		}
		if err := cfg.Validate(); err != nil {
			return err
		}
		if err := config.SaveConfig(path, cfg); err != nil {
			return err
		}
		_, err := fmt.Fprintln(cctx.App.Writer, path)
		return err
	},
}

var fundCmd = &cli.Command{
	Name:  "fund",
	Usage: "create or top up a record",
	Description: `Sets up a record outside of any program, the way a genesis would. The
address is random unless --address or --slip-of is given. --program makes the
record owned by the crowdfund program, --size allocates its data buffer.`,
	Flags: []cli.Flag{
		&cli.StringFlag{Name: "address"},
		&cli.StringFlag{Name: "slip-of", Usage: "derive the address as slip number --index of the campaign"},
		&cli.UintFlag{Name: "index", Usage: "index of the derived slip address"},
		&cli.Uint64Flag{Name: "balance", Usage: "amount added to the balance of the record"},
		&cli.IntFlag{Name: "size", Usage: "data buffer size of a new record"},
		&cli.BoolFlag{Name: "program", Usage: "new record is owned by the crowdfund program"},
		&cli.BoolFlag{Name: "reserve", Usage: "also add the storage reserve required for the data size"},
	},
	Action: withNode(func(cctx *cli.Context, n *node) error {
		addr, err := fundAddress(cctx, n)
		if err != nil {
			return err
		}

		rec, err := n.store.Get(addr)
		switch {
		case errors.Is(err, state.ErrRecordNotFound):
			owner := types.SystemProgramID
			if cctx.Bool("program") {
				owner = n.cfg.ProgramID
			}
			if cctx.Int("size") < 0 {
				return fmt.Errorf("size must not be negative")
			}
			rec = types.NewRecord(addr, owner, 0, cctx.Int("size"))
		case err != nil:
			return err
		case cctx.IsSet("size") || cctx.IsSet("program"):
			return fmt.Errorf("record %s exists, only balance can be added", addr)
		}

		amounts := []uint64{rec.Balance, cctx.Uint64("balance")}
		if cctx.Bool("reserve") {
			amounts = append(amounts, n.cfg.Rent.MinimumBalance(len(rec.Data)))
		}
		balance, ok := util.AddUint64(amounts...)
		if !ok {
			return fmt.Errorf("balance of %s would overflow", addr)
		}
		rec.Balance = balance
		if err := n.store.Commit([]*types.Record{rec}, nil); err != nil {
			return err
		}
		return printJSON(cctx, rec)
	}),
}

func fundAddress(cctx *cli.Context, n *node) (addr types.Address, err error) {
	switch {
	case cctx.IsSet("address") && cctx.IsSet("slip-of"):
		return addr, errors.New("--address and --slip-of are mutually exclusive")
	case cctx.IsSet("address"):
		if addr, err = types.HexToAddress(cctx.String("address")); err != nil {
			return addr, fmt.Errorf("address: %w", err)
		}
	case cctx.IsSet("slip-of"):
		campaign, err := types.HexToAddress(cctx.String("slip-of"))
		if err != nil {
			return addr, fmt.Errorf("slip-of: %w", err)
		}
		next := crowdfund.SlipAddresses(n.cfg.ProgramID, campaign)
		for i, end := uint(0), cctx.Uint("index")+1; i < end; i++ {
			if addr, err = next(); err != nil {
				return addr, err
			}
		}
	default:
		if _, err := rand.Read(addr[:]); err != nil {
			return addr, fmt.Errorf("generating address: %w", err)
		}
	}
	return addr, nil
}

var createCmd = &cli.Command{
	Name:  "create",
	Usage: "create (or reset) a campaign",
	Flags: []cli.Flag{
		&cli.StringFlag{Name: "campaign", Required: true, Usage: "campaign record, owned by the program"},
		&cli.StringFlag{Name: "creator", Required: true, Usage: "creator, signs the call"},
		&cli.Uint64Flag{Name: "goal", Required: true},
		&cli.Uint64Flag{Name: "raised", Usage: "initial raised amount"},
	},
	Action: withNode(func(cctx *cli.Context, n *node) error {
		addrs, err := addressFlags(cctx, "campaign", "creator")
		if err != nil {
			return err
		}
		campaign, creator := addrs[0], addrs[1]
		return n.execute(cctx,
			&crowdfund.CreateCampaignAttributes{Creator: creator, Goal: cctx.Uint64("goal"), AmountRaised: cctx.Uint64("raised")},
			txsystem.AccountMeta{Key: campaign, IsWritable: true},
			txsystem.AccountMeta{Key: creator, IsSigner: true},
		)
	}),
}

var donateCmd = &cli.Command{
	Name:  "donate",
	Usage: "donate from a donation slip to a campaign",
	Flags: []cli.Flag{
		&cli.StringFlag{Name: "campaign", Required: true},
		&cli.StringFlag{Name: "slip", Required: true, Usage: "donation slip record, owned by the program; its key is the donor and signs the call"},
		&cli.Uint64Flag{Name: "amount", Required: true},
	},
	Action: withNode(func(cctx *cli.Context, n *node) error {
		addrs, err := addressFlags(cctx, "campaign", "slip")
		if err != nil {
			return err
		}
		campaign, slip := addrs[0], addrs[1]
		return n.execute(cctx,
			&crowdfund.DonateAttributes{Campaign: campaign, Donor: slip, Amount: cctx.Uint64("amount")},
			txsystem.AccountMeta{Key: campaign, IsWritable: true},
			txsystem.AccountMeta{Key: slip, IsSigner: true, IsWritable: true},
		)
	}),
}

var withdrawCmd = &cli.Command{
	Name:  "withdraw",
	Usage: "withdraw from a campaign",
	Flags: []cli.Flag{
		&cli.StringFlag{Name: "campaign", Required: true},
		&cli.StringFlag{Name: "creator", Required: true, Usage: "creator of the campaign, signs the call"},
		&cli.StringFlag{Name: "recipient", Usage: "receiver of the funds, defaults to the creator"},
		&cli.StringFlag{Name: "slip", Required: true, Usage: "withdrawal slip record, owned by the program"},
		&cli.Uint64Flag{Name: "amount", Required: true},
	},
	Action: withNode(func(cctx *cli.Context, n *node) error {
		if !cctx.IsSet("recipient") {
			if err := cctx.Set("recipient", cctx.String("creator")); err != nil {
				return err
			}
		}
		addrs, err := addressFlags(cctx, "campaign", "creator", "recipient", "slip")
		if err != nil {
			return err
		}
		campaign, creator, recipient, slip := addrs[0], addrs[1], addrs[2], addrs[3]
		return n.execute(cctx,
			&crowdfund.WithdrawAttributes{Campaign: campaign, Creator: creator, Recipient: recipient, Amount: cctx.Uint64("amount")},
			txsystem.AccountMeta{Key: campaign, IsWritable: true},
			txsystem.AccountMeta{Key: creator, IsSigner: true, IsWritable: true},
			txsystem.AccountMeta{Key: recipient, IsWritable: true},
			txsystem.AccountMeta{Key: slip, IsWritable: true},
		)
	}),
}

type recordView struct {
	*types.Record
	Campaign   *crowdfund.CampaignData   `json:"campaign,omitempty"`
	Donation   *crowdfund.DonationData   `json:"donation,omitempty"`
	Withdrawal *crowdfund.WithdrawalData `json:"withdrawal,omitempty"`
}

type proofView struct {
	Record recordView      `json:"record"`
	Path   []proofStepView `json:"path"`
	Root   hexutil.Bytes   `json:"root"`
}

type proofStepView struct {
	Hash hexutil.Bytes `json:"hash"`
	Left bool          `json:"left"`
}

var showCmd = &cli.Command{
	Name:      "show",
	Usage:     "print records as JSON",
	ArgsUsage: "[address...]",
	Description: `Prints the records with the given addresses, all records when none is given.
Data of the records owned by the crowdfund program is decoded by its size.`,
	Flags: []cli.Flag{
		&cli.BoolFlag{Name: "root", Usage: "print the state root hash instead"},
		&cli.StringFlag{Name: "proof", Usage: "print the verified proof of inclusion of the record with hex `ADDRESS` instead"},
	},
	Action: withNode(func(cctx *cli.Context, n *node) error {
		if cctx.Bool("root") {
			root, err := state.RootHash(n.store, crypto.SHA256)
			if err != nil {
				return err
			}
			_, err = fmt.Fprintln(cctx.App.Writer, hexutil.Encode(root))
			return err
		}
		if cctx.IsSet("proof") {
			return showProof(cctx, n)
		}

		var records []*types.Record
		if cctx.NArg() == 0 {
			var err error
			if records, err = n.store.Records(); err != nil {
				return err
			}
		}
		for _, s := range cctx.Args().Slice() {
			addr, err := types.HexToAddress(s)
			if err != nil {
				return err
			}
			rec, err := n.store.Get(addr)
			if err != nil {
				return fmt.Errorf("record %s: %w", addr, err)
			}
			records = append(records, rec)
		}

		views := make([]recordView, len(records))
		for i, rec := range records {
			v, err := n.recordView(rec)
			if err != nil {
				return err
			}
			views[i] = v
		}
		return printJSON(cctx, views)
	}),
}

func showProof(cctx *cli.Context, n *node) error {
	addr, err := types.HexToAddress(cctx.String("proof"))
	if err != nil {
		return err
	}
	proof, err := state.Prove(n.store, addr, crypto.SHA256)
	if err != nil {
		return err
	}
	if err := proof.Verify(crypto.SHA256); err != nil {
		return fmt.Errorf("record %s: %w", addr, err)
	}
	rv, err := n.recordView(proof.Record)
	if err != nil {
		return err
	}
	view := proofView{Record: rv, Root: proof.Root, Path: make([]proofStepView, len(proof.Path))}
	for i, item := range proof.Path {
		view.Path[i] = proofStepView{Hash: item.Hash, Left: item.DirectionLeft}
	}
	return printJSON(cctx, view)
}

func (n *node) recordView(rec *types.Record) (recordView, error) {
	v := recordView{Record: rec}
	if !rec.IsOwnedBy(n.cfg.ProgramID) {
		return v, nil
	}
	var err error
	switch len(rec.Data) {
	case crowdfund.CampaignSize:
		v.Campaign = &crowdfund.CampaignData{}
		err = crowdfund.ReadState(rec.Data, v.Campaign)
	case crowdfund.DonationSize:
		v.Donation = &crowdfund.DonationData{}
		err = crowdfund.ReadState(rec.Data, v.Donation)
	case crowdfund.WithdrawalSize:
		v.Withdrawal = &crowdfund.WithdrawalData{}
		err = crowdfund.ReadState(rec.Data, v.Withdrawal)
	}
	if err != nil {
		return v, fmt.Errorf("decoding data of record %s: %w", rec.Address, err)
	}
	return v, nil
}

var eventsCmd = &cli.Command{
	Name:  "events",
	Usage: "print the event log",
	Action: withNode(func(cctx *cli.Context, n *node) error {
		events, err := n.store.Events()
		if err != nil {
			return err
		}
		return printEvents(cctx, events)
	}),
}

// addressFlags parses the named flags as hex encoded addresses.
func addressFlags(cctx *cli.Context, names ...string) ([]types.Address, error) {
	res := make([]types.Address, len(names))
	for i, name := range names {
		addr, err := types.HexToAddress(cctx.String(name))
		if err != nil {
			return nil, fmt.Errorf("%s: %w", name, err)
		}
		res[i] = addr
	}
	return res, nil
}
