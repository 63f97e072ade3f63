package client

import (
	"context"
	"net/http"
	"net/url"
	"strconv"

	httputil "officehub/pkg/http"
	"officehub/pkg/model"
)

// MeetingRoomClient talks to the meeting room and booking endpoints.
type MeetingRoomClient struct {
	http *HttpClient
}

func NewMeetingRoomClient(c *HttpClient) *MeetingRoomClient {
	return &MeetingRoomClient{http: c}
}

func (c *MeetingRoomClient) List(ctx context.Context, filter model.RoomFilter) ([]*model.RoomStatusView, error) {
	q := url.Values{}
	if filter.Location != "" {
		q.Set("location", filter.Location)
	}
	if filter.Floor != nil {
		q.Set("floor", strconv.Itoa(*filter.Floor))
	}
	if filter.Status != "" {
		q.Set("status", filter.Status)
	}

	path := "/api/meeting-rooms"
	if len(q) > 0 {
		path += "?" + q.Encode()
	}

	resp, err := c.http.GET(ctx, path)
	if err != nil {
		return nil, err
	}
	var rooms []*model.RoomStatusView
	if err := decodeInto(resp, http.StatusOK, &rooms); err != nil {
		return nil, err
	}
	return rooms, nil
}

func (c *MeetingRoomClient) Locations(ctx context.Context) ([]string, error) {
	resp, err := c.http.GET(ctx, "/api/meeting-rooms/locations")
	if err != nil {
		return nil, err
	}
	var body struct {
		Locations []string `json:"locations"`
	}
	if err := decodeInto(resp, http.StatusOK, &body); err != nil {
		return nil, err
	}
	return body.Locations, nil
}

func (c *MeetingRoomClient) Floors(ctx context.Context, location string) ([]int, error) {
	path := "/api/meeting-rooms/floors"
	if location != "" {
		path += "?location=" + url.QueryEscape(location)
	}
	resp, err := c.http.GET(ctx, path)
	if err != nil {
		return nil, err
	}
	var body struct {
		Floors []int `json:"floors"`
	}
	if err := decodeInto(resp, http.StatusOK, &body); err != nil {
		return nil, err
	}
	return body.Floors, nil
}

func (c *MeetingRoomClient) Book(ctx context.Context, roomID string, req *model.BookingRequest) (*model.Booking, error) {
	resp, err := c.http.POST(ctx, "/api/meeting-rooms/"+url.PathEscape(roomID)+"/book", req)
	if err != nil {
		return nil, err
	}
	var booking model.Booking
	if err := decodeInto(resp, http.StatusCreated, &booking); err != nil {
		return nil, err
	}
	return &booking, nil
}

func (c *MeetingRoomClient) Cancel(ctx context.Context, roomID, bookingID string) error {
	resp, err := c.http.DELETE(ctx, "/api/meeting-rooms/"+url.PathEscape(roomID)+"/booking/"+url.PathEscape(bookingID))
	if err != nil {
		return err
	}
	return decodeInto(resp, http.StatusOK, nil)
}

func (c *MeetingRoomClient) ClearRoom(ctx context.Context, roomID string) (int64, error) {
	resp, err := c.http.DELETE(ctx, "/api/meeting-rooms/"+url.PathEscape(roomID)+"/booking")
	if err != nil {
		return 0, err
	}
	var body httputil.ClearedResponse
	if err := decodeInto(resp, http.StatusOK, &body); err != nil {
		return 0, err
	}
	return body.BookingsCleared, nil
}

func (c *MeetingRoomClient) ClearAll(ctx context.Context) (int64, error) {
	resp, err := c.http.DELETE(ctx, "/api/meeting-rooms/clear-all-bookings")
	if err != nil {
		return 0, err
	}
	var body httputil.ClearedResponse
	if err := decodeInto(resp, http.StatusOK, &body); err != nil {
		return 0, err
	}
	return body.BookingsCleared, nil
}
