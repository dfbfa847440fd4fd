package papertrade

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"

	"github.com/papertrade/papertrade/date"
)

// The simulator keeps registry state between short-lived CLI invocations as a
// journal: a JSONL stream of the operations that were applied, one JSON
// object per line with a "command" discriminator. Replaying the journal
// through the regular registry operations rebuilds the exact same state,
// because purchases re-run the purchase algorithm against the price source.

// CommandType identifies an operation in the journal.
type CommandType string

const (
	CmdCreate CommandType = "create"
	CmdTrack  CommandType = "track"
	CmdBuy    CommandType = "buy"
	CmdDCA    CommandType = "dca"
)

// Operation is a single replayable registry mutation.
type Operation interface {
	Command() CommandType
	// Apply re-runs the operation against a registry.
	Apply(r *Registry) error
}

// CreateOp registers a new portfolio.
type CreateOp struct {
	Cmd       CommandType `json:"command"`
	Portfolio string      `json:"portfolio"`
}

func (o CreateOp) Command() CommandType    { return CmdCreate }
func (o CreateOp) Apply(r *Registry) error { return r.Create(o.Portfolio) }

// TrackOp adds a ticker to a portfolio without buying.
type TrackOp struct {
	Cmd       CommandType `json:"command"`
	Portfolio string      `json:"portfolio"`
	Ticker    string      `json:"ticker"`
}

func (o TrackOp) Command() CommandType    { return CmdTrack }
func (o TrackOp) Apply(r *Registry) error { return r.Track(o.Portfolio, o.Ticker) }

// BuyOp purchases amount worth of shares on a date. The journal records the
// requested amount, not the resulting lot, so replay recomputes shares from
// the price series.
type BuyOp struct {
	Cmd        CommandType `json:"command"`
	Portfolio  string      `json:"portfolio"`
	Ticker     string      `json:"ticker"`
	Amount     float64     `json:"amount"`
	Date       string      `json:"date"`
	Commission float64     `json:"commission,omitempty"`
}

func (o BuyOp) Command() CommandType { return CmdBuy }
func (o BuyOp) Apply(r *Registry) error {
	_, err := r.Buy(o.Portfolio, o.Ticker, o.Amount, o.Date, o.Commission)
	return err
}

// DCAOp applies a dollar-cost-averaging strategy. Weights use the same
// ticker=percent list encoding as the strategy files.
type DCAOp struct {
	Cmd        CommandType `json:"command"`
	Portfolio  string      `json:"portfolio"`
	Start      string      `json:"start"`
	End        string      `json:"end"`
	Amount     float64     `json:"amount"`
	Period     int         `json:"period"`
	Weights    string      `json:"weights"`
	Commission float64     `json:"commission,omitempty"`
}

func (o DCAOp) Command() CommandType { return CmdDCA }
func (o DCAOp) Apply(r *Registry) error {
	start, err := date.Parse(o.Start)
	if err != nil {
		return fmt.Errorf("%s: %w", err, ErrValidation)
	}
	end, err := date.Parse(o.End)
	if err != nil {
		return fmt.Errorf("%s: %w", err, ErrValidation)
	}
	weights, err := ParseWeights(o.Weights)
	if err != nil {
		return err
	}
	return r.ApplyDollarCostAveraging(o.Portfolio, DollarCostAverage{
		Start:      start,
		End:        end,
		Amount:     o.Amount,
		Period:     o.Period,
		Weights:    weights,
		Commission: o.Commission,
	})
}

// EncodeOperation appends a single operation as one JSON line.
func EncodeOperation(w io.Writer, op Operation) error {
	line, err := json.Marshal(op)
	if err != nil {
		return fmt.Errorf("cannot encode %s operation: %w", op.Command(), err)
	}
	if _, err := w.Write(append(line, '\n')); err != nil {
		return err
	}
	return nil
}

// DecodeJournal reads a JSONL stream of operations in order.
func DecodeJournal(r io.Reader) ([]Operation, error) {
	var ops []Operation
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}
		var identifier struct {
			Command CommandType `json:"command"`
		}
		if err := json.Unmarshal(line, &identifier); err != nil {
			return nil, fmt.Errorf("could not identify command in line %q: %w", string(line), err)
		}
		var op Operation
		switch identifier.Command {
		case CmdCreate:
			var o CreateOp
			if err := json.Unmarshal(line, &o); err != nil {
				return nil, err
			}
			op = o
		case CmdTrack:
			var o TrackOp
			if err := json.Unmarshal(line, &o); err != nil {
				return nil, err
			}
			op = o
		case CmdBuy:
			var o BuyOp
			if err := json.Unmarshal(line, &o); err != nil {
				return nil, err
			}
			op = o
		case CmdDCA:
			var o DCAOp
			if err := json.Unmarshal(line, &o); err != nil {
				return nil, err
			}
			op = o
		default:
			return nil, fmt.Errorf("unknown command %q in line %q", identifier.Command, string(line))
		}
		ops = append(ops, op)
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return ops, nil
}

// Replay applies a decoded journal to the registry, in order.
func Replay(r *Registry, ops []Operation) error {
	for i, op := range ops {
		if err := op.Apply(r); err != nil {
			return fmt.Errorf("replaying operation %d (%s): %w", i+1, op.Command(), err)
		}
	}
	return nil
}
