package chat

// RoomDirectory holds the room list and resolves which room is current.
type RoomDirectory struct {
	rooms []Room
}

// Update replaces the held room list. Callers pass rooms ordered by creation
// time ascending.
func (d *RoomDirectory) Update(rooms []Room) {
	d.rooms = rooms
}

// Rooms returns a copy of the held room list.
func (d *RoomDirectory) Rooms() []Room {
	out := make([]Room, len(d.rooms))
	copy(out, d.rooms)
	return out
}

// Select resolves the current room: the room matching requestedID when one
// exists, otherwise the earliest-created room. Returns nil when the
// directory is empty.
func (d *RoomDirectory) Select(requestedID string) *Room {
	if len(d.rooms) == 0 {
		return nil
	}
	if requestedID != "" {
		for i := range d.rooms {
			if d.rooms[i].ID == requestedID {
				room := d.rooms[i]
				return &room
			}
		}
	}
	room := d.rooms[0]
	return &room
}
