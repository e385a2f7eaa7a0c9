// Package control turns control-channel packets into settings and record log
// changes. The listener owns the socket and hands decoded packets over a
// channel; the dispatcher applies them and never touches the network.
package control

import (
	"errors"
	"fmt"

	"last-snow/internal/osc"
)

// Control addresses.
const (
	AddrForwardAddress = "/td_osc_address"
	AddrMaxCharacters  = "/max_characters"
	AddrMaxSentences   = "/max_sentences_per_csv"
	AddrRemoveAll      = "/remove_all_csv"
	AddrRemoveArchive  = "/remove_output_csv"
	AddrRemoveStaging  = "/remove_tmp_csv"
)

var ErrUnknownCommand = errors.New("control: unknown command")

// Command is one recognized control instruction.
type Command interface {
	isCommand()
}

type (
	SetForwardAddress struct{ Address string }
	SetMaxCharacters  struct{ Value int32 }
	SetMaxSentences   struct{ Value int32 }
	RemoveAll         struct{}
	RemoveArchive     struct{ Name string }
	RemoveStaging     struct{}
)

func (SetForwardAddress) isCommand() {}
func (SetMaxCharacters) isCommand()  {}
func (SetMaxSentences) isCommand()   {}
func (RemoveAll) isCommand()         {}
func (RemoveArchive) isCommand()     {}
func (RemoveStaging) isCommand()     {}

// Parse matches a message on address and argument shape. Unknown addresses and
// known addresses with the wrong arguments both return ErrUnknownCommand.
func Parse(msg *osc.Message) (Command, error) {
	switch msg.Address {
	case AddrForwardAddress:
		if s, ok := oneString(msg.Args); ok {
			return SetForwardAddress{Address: s}, nil
		}
	case AddrMaxCharacters:
		if n, ok := oneInt(msg.Args); ok {
			return SetMaxCharacters{Value: n}, nil
		}
	case AddrMaxSentences:
		if n, ok := oneInt(msg.Args); ok {
			return SetMaxSentences{Value: n}, nil
		}
	case AddrRemoveAll:
		if len(msg.Args) == 0 {
			return RemoveAll{}, nil
		}
	case AddrRemoveArchive:
		if s, ok := oneString(msg.Args); ok {
			return RemoveArchive{Name: s}, nil
		}
	case AddrRemoveStaging:
		if len(msg.Args) == 0 {
			return RemoveStaging{}, nil
		}
	}
	return nil, fmt.Errorf("%w: %s ,%s", ErrUnknownCommand, msg.Address, msg.TypeTags())
}

func oneString(args []any) (string, bool) {
	if len(args) != 1 {
		return "", false
	}
	s, ok := args[0].(string)
	return s, ok
}

func oneInt(args []any) (int32, bool) {
	if len(args) != 1 {
		return 0, false
	}
	n, ok := args[0].(int32)
	return n, ok
}
