package main

import (
	"bytes"
	"encoding/json"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/urfave/cli/v2"

	"github.com/crowdfund-org/crowdfund-go-base/config"
	"github.com/crowdfund-org/crowdfund-go-base/txsystem/crowdfund"
	"github.com/crowdfund-org/crowdfund-go-base/types"
)

// runApp executes the CLI with the home directory and returns the output.
func runApp(t *testing.T, home string, args ...string) (string, error) {
	t.Helper()
	buf := new(bytes.Buffer)
	app := newApp()
	app.Writer = buf
	app.ErrWriter = io.Discard
	app.ExitErrHandler = func(*cli.Context, error) {}
	err := app.Run(append([]string{"crowdfund", "--home", home}, args...))
	return buf.String(), err
}

func mustRun(t *testing.T, home string, args ...string) string {
	t.Helper()
	out, err := runApp(t, home, args...)
	require.NoError(t, err, "crowdfund %v", args)
	return out
}

func Test_CLI(t *testing.T) {
	home := t.TempDir()
	addr := func(b byte) string { return types.Address{0xab, b}.String() }
	campaign, creator, slip, wslip, recipient := addr(1), addr(2), addr(3), addr(4), addr(5)

	_, err := runApp(t, home, "show")
	require.ErrorContains(t, err, "config file not found")

	mustRun(t, home, "init")
	_, err = runApp(t, home, "init")
	require.ErrorContains(t, err, "already exists")

	mustRun(t, home, "fund", "--address", campaign, "--program", "--size", "48", "--reserve")
	mustRun(t, home, "fund", "--address", creator, "--balance", "10")
	mustRun(t, home, "fund", "--address", slip, "--program", "--size", "72", "--balance", "1000000")
	mustRun(t, home, "fund", "--address", wslip, "--program", "--size", "104", "--reserve")
	_, err = runApp(t, home, "fund", "--address", creator, "--size", "1")
	require.ErrorContains(t, err, "only balance can be added")

	out := mustRun(t, home, "create", "--campaign", campaign, "--creator", creator, "--goal", "1000000")
	require.Contains(t, out, "CampaignCreated")
	mustRun(t, home, "donate", "--campaign", campaign, "--slip", slip, "--amount", "500000")
	mustRun(t, home, "withdraw", "--campaign", campaign, "--creator", creator, "--recipient", recipient, "--slip", wslip, "--amount", "200000")

	_, err = runApp(t, home, "withdraw", "--campaign", campaign, "--creator", creator, "--recipient", recipient, "--slip", wslip, "--amount", "10000000")
	var exitErr cli.ExitCoder
	require.ErrorAs(t, err, &exitErr)
	require.Equal(t, int(crowdfund.ExitInsufficientFunds), exitErr.ExitCode())

	var views []map[string]any
	require.NoError(t, json.Unmarshal([]byte(mustRun(t, home, "show", recipient, campaign)), &views))
	require.Len(t, views, 2)
	require.Equal(t, "200000", views[0]["balance"])
	require.Equal(t, map[string]any{"creator": creator, "goal": "1000000", "amountRaised": "300000"}, views[1]["campaign"])

	var events []eventView
	require.NoError(t, json.Unmarshal([]byte(mustRun(t, home, "events")), &events))
	require.Len(t, events, 3)
	require.Equal(t, "WithdrawalRecorded", events[2].Kind)
	require.EqualValues(t, 3, events[2].Sequence)
	require.NotEqual(t, events[1].ID, events[2].ID)

	// slip addresses derived from the campaign
	var rec map[string]any
	require.NoError(t, json.Unmarshal([]byte(mustRun(t, home, "fund", "--slip-of", campaign, "--index", "1", "--program", "--size", "72", "--balance", "5")), &rec))
	next := crowdfund.SlipAddresses(config.DefaultProgramID, types.Address{0xab, 1})
	_, err = next()
	require.NoError(t, err)
	second, err := next()
	require.NoError(t, err)
	require.Equal(t, second.String(), rec["address"])
	_, err = runApp(t, home, "fund", "--slip-of", campaign, "--address", slip)
	require.ErrorContains(t, err, "mutually exclusive")

	root := mustRun(t, home, "show", "--root")
	require.Regexp(t, `^0x[0-9a-f]{64}\n$`, root)

	var proof struct {
		Record map[string]any  `json:"record"`
		Path   []proofStepView `json:"path"`
		Root   string          `json:"root"`
	}
	require.NoError(t, json.Unmarshal([]byte(mustRun(t, home, "show", "--proof", campaign)), &proof))
	require.Equal(t, strings.TrimSpace(root), proof.Root)
	require.Equal(t, campaign, proof.Record["address"])
	require.Equal(t, map[string]any{"creator": creator, "goal": "1000000", "amountRaised": "300000"}, proof.Record["campaign"])
	require.NotEmpty(t, proof.Path)
	_, err = runApp(t, home, "show", "--proof", addr(0x77))
	require.ErrorContains(t, err, "record not found")
}
