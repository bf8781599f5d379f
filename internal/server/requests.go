package server

import (
	"fmt"

	"github.com/go-playground/validator/v10"

	"github.com/matzehuels/railcdl/pkg/errors"
	"github.com/matzehuels/railcdl/pkg/network"
)

// Image formats accepted in analysis requests.
const (
	imageSVG  = "svg"
	imagePNG  = "png"
	imageNone = "none"
)

// stationRequest is the station editor's payload: a flat node and edge list
// with the analysis settings alongside.
type stationRequest struct {
	Name           string        `json:"name" validate:"max=256"`
	Nodes          []nodeRequest `json:"nodes" validate:"required,min=1,max=5000,dive"`
	Edges          []edgeRequest `json:"edges" validate:"max=20000,dive"`
	SignalDistance float64       `json:"signal_distance" validate:"omitempty,gt=0"`
	BranchPolicy   string        `json:"branch_policy" validate:"omitempty,oneof=first strict"`
	Image          string        `json:"image" validate:"omitempty,oneof=svg png none"`
	Save           bool          `json:"save"`
}

type nodeRequest struct {
	ID   string   `json:"id" validate:"required"`
	Type string   `json:"type"`
	X    *float64 `json:"x"`
	Y    *float64 `json:"y"`
}

type edgeRequest struct {
	From   string  `json:"from" validate:"required"`
	To     string  `json:"to" validate:"required"`
	Length float64 `json:"length" validate:"gte=0"`
}

// renderRequest asks for a diagram of a station.
type renderRequest struct {
	stationRequest
	Format     string `json:"format" validate:"omitempty,oneof=svg png dot"`
	Engine     string `json:"engine" validate:"omitempty,oneof=dot neato"`
	Detailed   bool   `json:"detailed"`
	EdgeLabels bool   `json:"edge_labels"`
	Positions  bool   `json:"positions"`
}

// defaultStationName is used when the editor sends no name.
const defaultStationName = "Manual Station"

// network builds the station described by the request. Node IDs are
// checked before anything is added, so a bad request never yields a
// partial network.
func (req *stationRequest) network() (*network.Network, error) {
	name := req.Name
	if name == "" {
		name = defaultStationName
	}
	if err := errors.ValidateStationName(name); err != nil {
		return nil, err
	}

	g := network.New(name, nil)
	for _, n := range req.Nodes {
		if err := errors.ValidateNodeID(n.ID); err != nil {
			return nil, err
		}
		kind, err := network.ParseKind(n.Type)
		if err != nil {
			return nil, errors.FromCore(fmt.Errorf("node %s: %w", n.ID, err))
		}
		node := network.Node{ID: n.ID, Kind: kind}
		if n.X != nil && n.Y != nil {
			node.Position = &network.Position{X: *n.X, Y: *n.Y}
		}
		if err := g.AddNode(node); err != nil {
			return nil, errors.FromCore(fmt.Errorf("node %s: %w", n.ID, err))
		}
	}
	for _, e := range req.Edges {
		if err := g.AddEdge(network.Edge{From: e.From, To: e.To, Length: e.Length}); err != nil {
			return nil, errors.FromCore(fmt.Errorf("edge %s->%s: %w", e.From, e.To, err))
		}
	}
	return g, nil
}

// validateRequest checks struct tags and converts failures into
// INVALID_INPUT errors naming the first offending field.
func (s *Server) validateRequest(req any) error {
	if err := s.validate.Struct(req); err != nil {
		return errors.Wrap(errors.ErrCodeInvalidInput, formatValidationError(err), "invalid request")
	}
	return nil
}

func formatValidationError(err error) error {
	validationErrs, ok := err.(validator.ValidationErrors)
	if !ok {
		return err
	}

	// Return the first validation error in a user-friendly format
	for _, e := range validationErrs {
		field := e.Namespace()
		switch e.Tag() {
		case "required":
			return fmt.Errorf("%s: field is required", field)
		case "min":
			return fmt.Errorf("%s: must be at least %s", field, e.Param())
		case "max":
			return fmt.Errorf("%s: must not exceed %s", field, e.Param())
		case "gt":
			return fmt.Errorf("%s: must be greater than %s", field, e.Param())
		case "gte":
			return fmt.Errorf("%s: must be at least %s", field, e.Param())
		case "oneof":
			return fmt.Errorf("%s: must be one of: %s", field, e.Param())
		default:
			return fmt.Errorf("%s: validation failed (%s)", field, e.Tag())
		}
	}
	return err
}
