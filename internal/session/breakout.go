package session

import "virtual_classroom_backend/internal/model"

// Assignment maps room name to the ordered participant names of one breakout
// round. Names, not ids: rooms are broadcast to every client in the cohort
// and rendered as-is. A name appears in at most one room per round.
type Assignment map[string][]string

// AutoAssign groups every cohort student with status In Progress into a
// single room. Used when a breakout timeline item is reached and no
// assignment has been broadcast yet.
func AutoAssign(cohort []model.Student) Assignment {
	var names []string
	for _, s := range cohort {
		if s.Status == model.StatusInProgress {
			names = append(names, s.Name)
		}
	}
	if len(names) == 0 {
		return nil
	}
	return Assignment{"Room 1": names}
}

// RoomFor returns the room holding the given name plus the co-participants
// (excluding the student). ok is false when the name is in no room, in which
// case the student's breakout overlay must never trigger.
func (a Assignment) RoomFor(name string) (room string, peers []string, ok bool) {
	for r, participants := range a {
		for _, p := range participants {
			if p == name {
				peers = make([]string, 0, len(participants)-1)
				for _, q := range participants {
					if q != name {
						peers = append(peers, q)
					}
				}
				return r, peers, true
			}
		}
	}
	return "", nil, false
}
