// Events are rotated daily by the logger itself

package filesystem

import (
	"bytes"
	"encoding/json"
	"fmt"
	"time"

	"github.com/chasex/glog"
	"github.com/prebid/aolhtb/analytics"
	"github.com/prebid/openrtb/v20/openrtb2"
)

type RequestType string

const (
	SLOT_EVENT RequestType = "/htb/event"
	AUCTION    RequestType = "/htb/auction"
)

// Module that can perform transactional logging
type FileLogger struct {
	Logger *glog.Logger
}

type logSlotEvent struct {
	Name       analytics.EventName `json:"name"`
	SessionID  string              `json:"sessionId"`
	StatsID    string              `json:"statsId"`
	HTSlotID   string              `json:"htSlotId"`
	XSlotNames []string            `json:"xSlotNames"`
	Time       time.Time           `json:"time"`
}

type logAuction struct {
	Status    int                   `json:"status,omitempty"`
	Errors    []string              `json:"errors,omitempty"`
	SlotName  string                `json:"slot,omitempty"`
	Response  *openrtb2.BidResponse `json:"response,omitempty"`
	StartTime time.Time             `json:"start_time"`
}

// Writes SlotEvent to file
func (f *FileLogger) LogSlotEvent(se *analytics.SlotEvent) {
	var b bytes.Buffer
	b.WriteString(jsonifySlotEvent(se))
	f.Logger.Debug(b.String())
	f.Logger.Flush()
}

// Writes AuctionObject to file
func (f *FileLogger) LogAuctionObject(ao *analytics.AuctionObject) {
	var b bytes.Buffer
	b.WriteString(jsonifyAuctionObject(ao))
	f.Logger.Debug(b.String())
	f.Logger.Flush()
}

func (f *FileLogger) Shutdown() {
	f.Logger.Flush()
}

// Method to initialize the analytic module
func NewFileLogger(filename string) (analytics.Module, error) {
	options := glog.LogOptions{
		File:  filename,
		Flag:  glog.LstdFlags,
		Level: glog.Ldebug,
		Mode:  glog.R_Day,
	}
	if logger, err := glog.New(options); err == nil {
		return &FileLogger{
			logger,
		}, nil
	} else {
		return nil, err
	}
}

func jsonifySlotEvent(se *analytics.SlotEvent) string {
	var logEntry *logSlotEvent
	if se != nil {
		logEntry = &logSlotEvent{
			Name:       se.Name,
			SessionID:  se.SessionID,
			StatsID:    se.StatsID,
			HTSlotID:   se.HTSlotID,
			XSlotNames: se.XSlotNames,
			Time:       se.Time,
		}
	}

	b, err := json.Marshal(&struct {
		Type RequestType `json:"type"`
		*logSlotEvent
	}{
		Type:         SLOT_EVENT,
		logSlotEvent: logEntry,
	})
	if err == nil {
		return string(b)
	}
	return fmt.Sprintf("Transactional Logs Error: Slot event object badly formed %v", err)
}

func jsonifyAuctionObject(ao *analytics.AuctionObject) string {
	var logEntry *logAuction
	if ao != nil {
		logEntry = &logAuction{
			Status:    ao.Status,
			SlotName:  ao.SlotName,
			Response:  ao.Response,
			StartTime: ao.StartTime,
		}
		for _, err := range ao.Errors {
			logEntry.Errors = append(logEntry.Errors, err.Error())
		}
	}

	b, err := json.Marshal(&struct {
		Type RequestType `json:"type"`
		*logAuction
	}{
		Type:       AUCTION,
		logAuction: logEntry,
	})
	if err == nil {
		return string(b)
	}
	return fmt.Sprintf("Transactional Logs Error: Auction object badly formed %v", err)
}
