// Package wasiproto defines the stdin/stdout protocol of the WASI build.
//
//	stdin:  {"expression": "price * qty", "names": [{"name": "price", "type": "number", "value": "2"}, ...]}
//	stdout: {"result": 4, "type": "number"}            on success
//	        {"error": "<message>", "code": 2008}        on failure
package wasiproto

import (
	"encoding/json"
	"errors"

	"github.com/sandrolain/exprlite"
	"github.com/sandrolain/exprlite/pkg/naming/yamlnames"
	"github.com/sandrolain/exprlite/pkg/protoval"
	"github.com/sandrolain/exprlite/pkg/types"
)

// Request asks for the evaluation of an expression.
type Request struct {
	Expression string            `json:"expression"`
	Name       string            `json:"name,omitempty"`
	Names      []yamlnames.Entry `json:"names,omitempty"`
}

// Response carries the result as protobuf canonical JSON, or an error.
type Response struct {
	Result json.RawMessage `json:"result,omitempty"`
	Type   string          `json:"type,omitempty"`
	Error  string          `json:"error,omitempty"`
	Code   int             `json:"code,omitempty"`
}

// Failed reports whether the response carries an error.
func (r Response) Failed() bool {
	return r.Error != ""
}

// Handle evaluates req.
func Handle(req Request) Response {
	names, err := yamlnames.Build(req.Names)
	if err != nil {
		return failure(err)
	}
	opts := []exprlite.Option{
		exprlite.WithProviders(names),
		exprlite.WithName(req.Name),
	}

	v, err := exprlite.Eval(req.Expression, opts...)
	if err != nil {
		return failure(err)
	}
	_, t, err := types.Canonical(v)
	if err != nil {
		return failure(err)
	}
	out, err := protoval.MarshalJSON(v)
	if err != nil {
		return failure(err)
	}
	return Response{Result: out, Type: t.String()}
}

func failure(err error) Response {
	resp := Response{Error: err.Error()}
	var e *types.Error
	if errors.As(err, &e) {
		resp.Code = int(e.Code)
	}
	return resp
}
