package main

import (
	"fmt"
	"net"
	"strconv"

	"github.com/spf13/cobra"

	"last-snow/internal/osc"
)

var (
	sendTo      string
	sendStrings bool
)

var sendCmd = &cobra.Command{
	Use:   "send <address> [args...]",
	Short: "Send one OSC control message to a kiosk",
	Long: `Encodes a single OSC message and sends it over UDP. Arguments that parse as
32-bit integers are sent as int32, everything else as strings.

Examples:
  kiosk send /max_sentences_per_csv 50
  kiosk send /td_osc_address 192.168.1.20:7002
  kiosk send --string /remove_output_csv 3.csv
  kiosk send /remove_all_csv`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		to := sendTo
		if to == "" {
			to = kiosk.cfg.ListenAddr
		}
		msg := buildMessage(args[0], args[1:], sendStrings)
		data, err := osc.Encode(msg)
		if err != nil {
			return err
		}
		conn, err := net.Dial("udp", to)
		if err != nil {
			return err
		}
		defer func(conn net.Conn) {
			_ = conn.Close()
		}(conn)
		if _, err := conn.Write(data); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "sent %s to %s\n", msg, to)
		return nil
	},
}

func init() {
	sendCmd.Flags().StringVar(&sendTo, "to", "", "kiosk control address (default KIOSK_LISTEN_ADDR)")
	sendCmd.Flags().BoolVarP(&sendStrings, "string", "s", false, "send every argument as a string")
}

func buildMessage(address string, args []string, forceStrings bool) *osc.Message {
	msg := osc.NewMessage(address)
	for _, a := range args {
		if !forceStrings {
			if n, err := strconv.ParseInt(a, 10, 32); err == nil {
				msg.Args = append(msg.Args, int32(n))
				continue
			}
		}
		msg.Args = append(msg.Args, a)
	}
	return msg
}
