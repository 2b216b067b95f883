package dashboard

import (
	"github.com/AngelCh415/FUNNEL_GO/internal/errs"
)

// Command types accepted by Dispatch.
const (
	CmdPointerMove     = "pointer.move"
	CmdPointerLeave    = "pointer.leave"
	CmdPopupEnter      = "popup.enter"
	CmdPopupLeave      = "popup.leave"
	CmdClick           = "click"
	CmdClickPoint      = "click.point"
	CmdClickBackground = "click.background"
	CmdViewDetails     = "view.details"
	CmdSelectPeriod    = "period.select"
	CmdToggleFilter    = "filter.toggle"
	CmdCloseModal      = "modal.close"
)

// Command is one UI event posted by a client.
type Command struct {
	Type    string  `json:"type"`
	X       float64 `json:"x"`
	Y       float64 `json:"y"`
	Channel string  `json:"channel"`
	Stage   string  `json:"stage"`
	Period  string  `json:"period"`
	Filter  string  `json:"filter"`
	Checked bool    `json:"checked"`
}

// Dispatch applies a command to the session.
func (s *Session) Dispatch(c Command) error {
	switch c.Type {
	case CmdPointerMove:
		s.PointerMove(c.X, c.Y)
	case CmdPointerLeave:
		s.PointerLeave()
	case CmdPopupEnter:
		s.PopupEnter()
	case CmdPopupLeave:
		s.PopupLeave()
	case CmdClick:
		s.Click(c.X, c.Y)
	case CmdClickPoint:
		return s.ClickPoint(c.Channel, c.Stage)
	case CmdClickBackground:
		s.ClickBackground()
	case CmdViewDetails:
		s.ViewDetails()
	case CmdSelectPeriod:
		return s.SelectPeriod(c.Period)
	case CmdToggleFilter:
		return s.ToggleFilter(c.Filter, c.Checked)
	case CmdCloseModal:
		s.CloseModal()
	default:
		return errs.NewValidationError("unknown event type " + c.Type)
	}
	return nil
}
