// Package seed holds the fixed meeting-room catalogue loaded at startup.
package seed

import (
	"time"

	"officehub/pkg/model"
)

type roomSpec struct {
	id, name, location string
	floor, capacity    int
	equipment          string
}

var catalogue = []roomSpec{
	{"ifc_conf_11a", "IFC Conference Room 11A", "IFC", 11, 8, "Projector, Whiteboard"},
	{"ifc_conf_12a", "IFC Conference Room 12A", "IFC", 12, 12, "Video Conference, Projector"},
	{"ifc_oval_14", "OVAL MEETING ROOM", "IFC", 14, 10, "Smart Board, Video Conference"},
	{"ifc_petronas_14", "PETRONAS MEETING ROOM", "IFC", 14, 5, "Projector, Whiteboard"},
	{"ifc_global_14", "GLOBAL CENTER MEETING ROOM", "IFC", 14, 5, "Video Conference"},
	{"ifc_louvre_14", "LOUVRE MEETING ROOM", "IFC", 14, 5, "Projector"},
	{"ifc_golden_14", "GOLDEN GATE MEETING ROOM", "IFC", 14, 10, "Smart Board"},
	{"ifc_empire_14", "EMPIRE STATE MEETING ROOM", "IFC", 14, 5, "Whiteboard"},
	{"ifc_marina_14", "MARINA BAY MEETING ROOM", "IFC", 14, 5, "Projector, Whiteboard"},
	{"ifc_burj_14", "BURJ MEETING ROOM", "IFC", 14, 5, "Video Conference"},
	{"ifc_board_14", "BOARD ROOM", "IFC", 14, 20, "Large Screen, Video Conference, Smart Board"},
	{"central_conf_1", "Central Office Conference Room", "Central Office 75", 1, 6, "Projector"},
	{"office75_conf_1", "Office 75 Meeting Room", "Office 75", 1, 4, "Whiteboard"},
	{"noida_conf_1", "Noida Conference Room", "Noida", 1, 10, "Video Conference, Projector"},
	{"project_conf_1", "Project Office Meeting Room", "Project Office", 1, 8, "Projector, Whiteboard"},
}

// Rooms returns fresh copies of the catalogue stamped with createdAt.
func Rooms(createdAt time.Time) []*model.MeetingRoom {
	rooms := make([]*model.MeetingRoom, 0, len(catalogue))
	for _, s := range catalogue {
		rooms = append(rooms, &model.MeetingRoom{
			ID:        s.id,
			Name:      s.name,
			Location:  s.location,
			Floor:     s.floor,
			Capacity:  s.capacity,
			Equipment: s.equipment,
			CreatedAt: createdAt.UTC(),
		})
	}
	return rooms
}
