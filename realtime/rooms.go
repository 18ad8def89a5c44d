package realtime

import "sync"

// Rooms groups connections into named broadcast scopes. Both directions are
// indexed so leave-all on disconnect does not scan every room.
type Rooms struct {
	mu        sync.RWMutex
	rooms     map[string]map[string]struct{}
	connRooms map[string]map[string]struct{}
}

func NewRooms() *Rooms {
	return &Rooms{
		rooms:     make(map[string]map[string]struct{}),
		connRooms: make(map[string]map[string]struct{}),
	}
}

func (rm *Rooms) Join(connID, room string) {
	rm.mu.Lock()
	defer rm.mu.Unlock()

	if _, ok := rm.rooms[room]; !ok {
		rm.rooms[room] = make(map[string]struct{})
	}
	rm.rooms[room][connID] = struct{}{}

	if _, ok := rm.connRooms[connID]; !ok {
		rm.connRooms[connID] = make(map[string]struct{})
	}
	rm.connRooms[connID][room] = struct{}{}
}

func (rm *Rooms) Leave(connID, room string) {
	rm.mu.Lock()
	defer rm.mu.Unlock()
	rm.leaveLocked(connID, room)
}

func (rm *Rooms) leaveLocked(connID, room string) {
	if members, ok := rm.rooms[room]; ok {
		delete(members, connID)
		if len(members) == 0 {
			delete(rm.rooms, room)
		}
	}
	if rooms, ok := rm.connRooms[connID]; ok {
		delete(rooms, room)
		if len(rooms) == 0 {
			delete(rm.connRooms, connID)
		}
	}
}

// RemoveConn drops the connection from every room it joined.
func (rm *Rooms) RemoveConn(connID string) {
	rm.mu.Lock()
	defer rm.mu.Unlock()

	for room := range rm.connRooms[connID] {
		if members, ok := rm.rooms[room]; ok {
			delete(members, connID)
			if len(members) == 0 {
				delete(rm.rooms, room)
			}
		}
	}
	delete(rm.connRooms, connID)
}

// Members returns the connection ids currently in the room.
func (rm *Rooms) Members(room string) []string {
	rm.mu.RLock()
	defer rm.mu.RUnlock()

	members, ok := rm.rooms[room]
	if !ok {
		return nil
	}
	out := make([]string, 0, len(members))
	for connID := range members {
		out = append(out, connID)
	}
	return out
}

// InRoom reports whether the connection currently belongs to the room.
func (rm *Rooms) InRoom(connID, room string) bool {
	rm.mu.RLock()
	defer rm.mu.RUnlock()
	_, ok := rm.rooms[room][connID]
	return ok
}

// RoomsOf returns how many rooms the connection belongs to.
func (rm *Rooms) RoomsOf(connID string) int {
	rm.mu.RLock()
	defer rm.mu.RUnlock()
	return len(rm.connRooms[connID])
}

func (rm *Rooms) RoomCount() int {
	rm.mu.RLock()
	defer rm.mu.RUnlock()
	return len(rm.rooms)
}
