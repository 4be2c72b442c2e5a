// Package taskio is the thin JSON input/output adapter that turns a
// pre-built task description into the in-memory task.Task the pipeline
// consumes, and a compiled task's summary back out. It is deliberately not
// a grammar/parser for a logical-formula surface syntax: expression trees
// in the JSON document already arrive as a structured tagged union, the
// same boundary a parser's output would cross.
package taskio

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/thomaskeller79/rddlc/internal/ast"
	"github.com/thomaskeller79/rddlc/internal/eval"
	"github.com/thomaskeller79/rddlc/internal/state"
	"github.com/thomaskeller79/rddlc/internal/task"
)

// exprDoc is the tagged-union wire shape of an expression tree node.
type exprDoc struct {
	Type     string        `json:"type"`
	Value    float64       `json:"value,omitempty"`
	Index    int           `json:"index,omitempty"`
	Name     string        `json:"name,omitempty"`
	Op       string        `json:"op,omitempty"`
	Operand  *exprDoc      `json:"operand,omitempty"`
	Operands []*exprDoc    `json:"operands,omitempty"`
	Left     *exprDoc      `json:"left,omitempty"`
	Right    *exprDoc      `json:"right,omitempty"`
	Cond     *exprDoc      `json:"cond,omitempty"`
	Then     *exprDoc      `json:"then,omitempty"`
	Else     *exprDoc      `json:"else,omitempty"`
	Outcomes []*outcomeDoc `json:"outcomes,omitempty"`
}

type outcomeDoc struct {
	Value *exprDoc `json:"value"`
	Prob  *exprDoc `json:"prob"`
}

type fluentDoc struct {
	Index      int    `json:"index"`
	Name       string `json:"name"`
	DomainSize int    `json:"domainSize"`
	NOOPValue  int    `json:"noopValue"`
}

type cpfDoc struct {
	HeadFluentIndex int     `json:"headFluentIndex"`
	Name            string  `json:"name"`
	Formula         *exprDoc `json:"formula"`
}

// taskDoc is the wire shape of a full task description.
type taskDoc struct {
	Horizon       int         `json:"horizon"`
	StateFluents  []fluentDoc `json:"stateFluents"`
	ActionFluents []fluentDoc `json:"actionFluents"`
	InitialState  []float64   `json:"initialState"`
	CPFs          []cpfDoc    `json:"cpfs"`
	Reward        *exprDoc    `json:"reward"`
	Preconditions []*exprDoc  `json:"preconditions"`
}

// Decode reads a JSON task description from r and builds a task.Task.
func Decode(r io.Reader) (*task.Task, error) {
	var doc taskDoc
	if err := json.NewDecoder(r).Decode(&doc); err != nil {
		return nil, fmt.Errorf("taskio: decoding task document: %w", err)
	}

	// A single canonical StateFluentRef per index is built up front so
	// that Simplify's identity-keyed Replacements map can recognize every
	// occurrence of the same fluent across CPFs, the reward and
	// preconditions.
	stateRefs := make(map[int]*ast.StateFluentRef, len(doc.StateFluents))
	for _, f := range doc.StateFluents {
		stateRefs[f.Index] = &ast.StateFluentRef{Index: f.Index, Name: f.Name}
	}
	actionRefs := make(map[int]*ast.ActionFluentRef, len(doc.ActionFluents))
	for _, f := range doc.ActionFluents {
		actionRefs[f.Index] = &ast.ActionFluentRef{Index: f.Index, Name: f.Name}
	}

	decodeRef := func(d *exprDoc) (ast.Expr, error) { return decodeExpr(d, stateRefs, actionRefs) }

	t := &task.Task{
		Horizon:      doc.Horizon,
		InitialState: state.State{Values: append([]float64(nil), doc.InitialState...)},
	}
	for _, f := range doc.StateFluents {
		t.StateFluents = append(t.StateFluents, task.Fluent{Index: f.Index, Name: f.Name, DomainSize: f.DomainSize})
	}
	for _, f := range doc.ActionFluents {
		t.ActionFluents = append(t.ActionFluents, task.Fluent{
			Index: f.Index, Name: f.Name, DomainSize: f.DomainSize, NOOPValue: f.NOOPValue,
		})
	}
	for _, c := range doc.CPFs {
		formula, err := decodeRef(c.Formula)
		if err != nil {
			return nil, fmt.Errorf("taskio: decoding CPF %q: %w", c.Name, err)
		}
		t.CPFs = append(t.CPFs, eval.NewCPF(c.HeadFluentIndex, c.Name, formula))
	}
	reward, err := decodeRef(doc.Reward)
	if err != nil {
		return nil, fmt.Errorf("taskio: decoding reward: %w", err)
	}
	t.Reward = eval.NewRewardCPF(reward)

	for i, p := range doc.Preconditions {
		formula, err := decodeRef(p)
		if err != nil {
			return nil, fmt.Errorf("taskio: decoding precondition %d: %w", i, err)
		}
		t.Preconditions = append(t.Preconditions, eval.NewActionPrecondition(i, formula))
	}

	return t, nil
}

func decodeExpr(d *exprDoc, stateRefs map[int]*ast.StateFluentRef, actionRefs map[int]*ast.ActionFluentRef) (ast.Expr, error) {
	if d == nil {
		return nil, fmt.Errorf("taskio: missing expression node")
	}
	decode := func(child *exprDoc) (ast.Expr, error) { return decodeExpr(child, stateRefs, actionRefs) }

	switch d.Type {
	case "constant":
		return &ast.Constant{Value: d.Value}, nil
	case "stateFluent":
		ref, ok := stateRefs[d.Index]
		if !ok {
			return nil, fmt.Errorf("taskio: reference to undeclared state fluent %d", d.Index)
		}
		return ref, nil
	case "actionFluent":
		ref, ok := actionRefs[d.Index]
		if !ok {
			return nil, fmt.Errorf("taskio: reference to undeclared action fluent %d", d.Index)
		}
		return ref, nil
	case "negation":
		operand, err := decode(d.Operand)
		if err != nil {
			return nil, err
		}
		return &ast.Negation{Operand: operand}, nil
	case "conjunction":
		operands, err := decodeAll(d.Operands, decode)
		if err != nil {
			return nil, err
		}
		return &ast.Conjunction{Operands: operands}, nil
	case "disjunction":
		operands, err := decodeAll(d.Operands, decode)
		if err != nil {
			return nil, err
		}
		return &ast.Disjunction{Operands: operands}, nil
	case "comparison":
		left, err := decode(d.Left)
		if err != nil {
			return nil, err
		}
		right, err := decode(d.Right)
		if err != nil {
			return nil, err
		}
		return &ast.Comparison{Op: d.Op, Left: left, Right: right}, nil
	case "arithmetic":
		left, err := decode(d.Left)
		if err != nil {
			return nil, err
		}
		right, err := decode(d.Right)
		if err != nil {
			return nil, err
		}
		return &ast.Arithmetic{Op: d.Op, Left: left, Right: right}, nil
	case "ifThenElse":
		cond, err := decode(d.Cond)
		if err != nil {
			return nil, err
		}
		then, err := decode(d.Then)
		if err != nil {
			return nil, err
		}
		els, err := decode(d.Else)
		if err != nil {
			return nil, err
		}
		return &ast.IfThenElse{Cond: cond, Then: then, Else: els}, nil
	case "discrete":
		outcomes := make([]ast.DiscreteOutcome, len(d.Outcomes))
		for i, o := range d.Outcomes {
			value, err := decode(o.Value)
			if err != nil {
				return nil, err
			}
			prob, err := decode(o.Prob)
			if err != nil {
				return nil, err
			}
			outcomes[i] = ast.DiscreteOutcome{Value: value, Prob: prob}
		}
		return &ast.Discrete{Outcomes: outcomes}, nil
	default:
		return nil, fmt.Errorf("taskio: unknown expression node type %q", d.Type)
	}
}

func decodeAll(docs []*exprDoc, decode func(*exprDoc) (ast.Expr, error)) ([]ast.Expr, error) {
	out := make([]ast.Expr, len(docs))
	for i, d := range docs {
		e, err := decode(d)
		if err != nil {
			return nil, err
		}
		out[i] = e
	}
	return out, nil
}
