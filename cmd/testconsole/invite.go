package main

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/safermobility/testconsole/invite"
	"github.com/safermobility/testconsole/sdp"
	"github.com/spf13/cobra"
)

func (a *app) newParseCmd() *cobra.Command {
	var compact bool

	cmd := &cobra.Command{
		Use:   "parse [file|-]",
		Short: "Parse a raw INVITE into its submission payload",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			raw, err := readInput(cmd, args)
			if err != nil {
				return err
			}
			inv, err := a.proc.Parse(string(raw))
			if err != nil {
				return err
			}
			data, err := a.proc.MarshalPayload(inv)
			if err != nil {
				return err
			}
			if !compact {
				var out bytes.Buffer
				if err := json.Indent(&out, data, "", "  "); err != nil {
					return err
				}
				data = out.Bytes()
			}
			fmt.Fprintln(cmd.OutOrStdout(), string(data))
			return nil
		},
	}
	cmd.Flags().BoolVar(&compact, "compact", false, "print the payload on one line")

	return cmd
}

func (a *app) newGenerateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "generate [file|-]",
		Short: "Render the INVITE preview from a payload or raw INVITE",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := readInput(cmd, args)
			if err != nil {
				return err
			}
			inv, err := a.loadInvite(data)
			if err != nil {
				return err
			}
			fmt.Fprint(cmd.OutOrStdout(), a.proc.Generate(inv))
			return nil
		},
	}
}

func (a *app) newRenderCmd() *cobra.Command {
	var local invite.Local

	cmd := &cobra.Command{
		Use:   "render [file|-]",
		Short: "Resolve the preview placeholders into a concrete SIP request",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := readInput(cmd, args)
			if err != nil {
				return err
			}
			inv, err := a.loadInvite(data)
			if err != nil {
				return err
			}
			req, err := a.proc.BuildRequest(inv, local)
			if err != nil {
				return err
			}
			fmt.Fprint(cmd.OutOrStdout(), req.String())
			return nil
		},
	}
	cmd.Flags().StringVar(&local.IP, "local-ip", "", "local signaling address (default 127.0.0.1)")
	cmd.Flags().IntVar(&local.Port, "local-port", 0, "local signaling port (default 5060)")
	cmd.Flags().StringVar(&local.User, "local-user", "", "user part of From and Contact (default tester)")

	return cmd
}

func (a *app) newValidateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "validate [file|-]",
		Short: "Check that the generated SDP body is well formed",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := readInput(cmd, args)
			if err != nil {
				return err
			}
			inv, err := a.loadInvite(data)
			if err != nil {
				return err
			}
			n, err := sdp.Validate(inv.SDP.Data(a.proc.RenderOptions()))
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "SDP ok: %d media description(s)\n", n)
			return nil
		},
	}
}
