package live

import (
	"errors"

	"tripdesk/forms"
	"tripdesk/toast"
)

var editorActions = map[string]bool{
	"edit":       true,
	"form":       true,
	"attach":     true,
	"detach":     true,
	"save":       true,
	"discard":    true,
	"room":       true,
	"room-form":  true,
	"room-save":  true,
	"room-close": true,
}

var errNoEditor = errors.New("no form is open for this screen")

func (s *Session) submitter() *forms.Submitter {
	return &forms.Submitter{
		Client:   s.client,
		Notifier: toast.RoomNotifier{Hub: s.deps.Hub, Room: s.ID},
		Recorder: s.deps.Recorder,
		OnSaved:  s.deps.OnMutation,
	}
}

func (s *Session) pushForm(name string, ed *forms.Editor) {
	s.send(outbound{Type: "form", Screen: name, State: ed})
}

// handleEditor runs an add/edit form action. Unlike list loads these run
// inline on the inbox: each one depends on the form the previous one left.
func (s *Session) handleEditor(in inbound) {
	if in.Action == "edit" {
		if old := s.editors[in.Screen]; old != nil {
			old.Close()
			delete(s.editors, in.Screen)
		}
		if s.deps.Previews == nil {
			s.fail(in.Screen, errors.New("file previews are not available"))
			return
		}
		sc := s.deps.Previews.Scope(s.ID)
		ed, err := forms.OpenEditor(s.ctx, s.client, sc, in.Screen, in.Key)
		if err != nil {
			sc.Release()
			s.fail(in.Screen, err)
			return
		}
		s.editors[in.Screen] = ed
		s.pushForm(in.Screen, ed)
		return
	}

	ed := s.editors[in.Screen]
	if ed == nil {
		s.fail(in.Screen, errNoEditor)
		return
	}

	var err error
	switch in.Action {
	case "form":
		err = ed.Update(in.Form)
	case "attach":
		err = ed.Attach(in.Key, in.Value)
	case "detach":
		err = ed.Detach(in.Key, in.Value, in.Index)
	case "save":
		_, err = ed.Save(s.ctx, s.submitter())
	case "discard":
		ed.Close()
		delete(s.editors, in.Screen)
		s.send(outbound{Type: "closed", Screen: in.Screen})
		return
	case "room":
		err = ed.OpenRoom(in.ID)
	case "room-form":
		err = ed.UpdateRoom(in.Form)
	case "room-save":
		err = ed.SaveRoom(s.ctx, s.submitter())
	case "room-close":
		err = ed.CloseRoom()
	}
	if err != nil {
		s.fail(in.Screen, err)
	}
	s.pushForm(in.Screen, ed)
}
