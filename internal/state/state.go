// Package state holds the per-client UI state and the actions that change
// it. Reduce is pure; Store serializes dispatches and reports each
// transition to an analytics sink.
package state

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/briangreenhill/tcxview/tcx"
)

type UploadStatus string

const (
	UploadIdle      UploadStatus = "idle"
	UploadUploading UploadStatus = "uploading"
	UploadSuccess   UploadStatus = "success"
	UploadError     UploadStatus = "error"
)

const DefaultPrimaryColor = "#ffd700"

type AppState struct {
	SelectedRowID      *int            `json:"selectedRowId"`
	SelectedRow        *Row            `json:"selectedRowData"`
	SidePanelOpen      bool            `json:"isSidePanelOpen"`
	LastButtonClicked  string          `json:"lastButtonClicked,omitempty"`
	CurrentContentType ContentType     `json:"currentContentType"`
	FilterText         string          `json:"filterText"`
	CurrentTabName     string          `json:"currentTabName"`
	PrimaryColor       string          `json:"primaryColor"`
	UploadStatus       UploadStatus    `json:"fileUploadStatus"`
	UploadedFileName   string          `json:"uploadedFileName,omitempty"`
	UploadError        string          `json:"uploadError,omitempty"`
	UploadedStats      *tcx.Statistics `json:"uploadedFileStats"`
	ViewingDetails     bool            `json:"isViewingDetails"`
}

func Initial() AppState {
	return AppState{
		CurrentContentType: ContentHate,
		CurrentTabName:     string(ContentHate),
		PrimaryColor:       DefaultPrimaryColor,
		UploadStatus:       UploadIdle,
	}
}

// Action is a state transition. The concrete types below are the complete set.
type Action interface {
	Type() string
}

type RowClicked struct {
	RowID int `json:"rowId"`
	Row   *Row `json:"rowData"`
}

type ButtonClicked struct {
	ButtonName string `json:"buttonName"`
	ButtonID   string `json:"buttonId"`
}

type CloseSidePanel struct{}

type SetFilter struct {
	FilterText  string `json:"filterText"`
	ResultCount int    `json:"resultCount"`
}

type ChangeTab struct {
	TabName string `json:"tabName"`
}

type SetPrimaryColor struct {
	Color string `json:"color"`
}

type UploadOpened struct{}

type UploadStarted struct {
	FileName string `json:"fileName"`
}

type UploadSucceeded struct {
	Stats *tcx.Statistics `json:"fileStats"`
}

type UploadFailed struct {
	Error string `json:"error"`
}

type ViewDetails struct{}

type MapReset struct{}

type OpenSettings struct{}

func (RowClicked) Type() string      { return "rowClicked" }
func (ButtonClicked) Type() string   { return "buttonClicked" }
func (CloseSidePanel) Type() string  { return "closeSidePanel" }
func (SetFilter) Type() string       { return "setFilter" }
func (ChangeTab) Type() string       { return "changeTab" }
func (SetPrimaryColor) Type() string { return "setPrimaryColor" }
func (UploadOpened) Type() string    { return "uploadFileOpened" }
func (UploadStarted) Type() string   { return "uploadFileStart" }
func (UploadSucceeded) Type() string { return "uploadFileSuccess" }
func (UploadFailed) Type() string    { return "uploadFileError" }
func (ViewDetails) Type() string     { return "viewDetails" }
func (MapReset) Type() string        { return "mapReset" }
func (OpenSettings) Type() string    { return "openSettings" }

// Reduce applies a to s and returns the new state. s is not modified.
func Reduce(s AppState, a Action) AppState {
	switch a := a.(type) {
	case RowClicked:
		id := a.RowID
		s.SelectedRowID = &id
		s.SelectedRow = a.Row
		s.SidePanelOpen = true
		s.ViewingDetails = false
	case ButtonClicked:
		s.LastButtonClicked = a.ButtonName
		s.CurrentContentType = ContentFor(a.ButtonName)
	case CloseSidePanel:
		s.SelectedRowID = nil
		s.SelectedRow = nil
		s.SidePanelOpen = false
		s.ViewingDetails = false
	case SetFilter:
		s.FilterText = a.FilterText
	case ChangeTab:
		s.CurrentContentType = ContentFor(a.TabName)
		s.FilterText = ""
		s.CurrentTabName = a.TabName
	case SetPrimaryColor:
		s.PrimaryColor = a.Color
	case UploadStarted:
		s.UploadStatus = UploadUploading
		s.UploadedFileName = a.FileName
		s.UploadError = ""
	case UploadSucceeded:
		s.UploadStatus = UploadSuccess
		s.UploadError = ""
		s.UploadedStats = a.Stats
		if a.Stats != nil {
			s.UploadedFileName = a.Stats.FileName
		}
	case UploadFailed:
		s.UploadStatus = UploadError
		s.UploadError = a.Error
	case ViewDetails:
		s.ViewingDetails = true
		s.SidePanelOpen = true
		s.SelectedRowID = nil
		s.SelectedRow = nil
	case OpenSettings:
		s.CurrentContentType = ContentSettings
	case UploadOpened, MapReset:
		// analytics only
	}
	return s
}

var ErrUnknownAction = errors.New("unknown action")

// Decode builds an action from its type name and JSON payload.
func Decode(typ string, payload json.RawMessage) (Action, error) {
	var a Action
	switch typ {
	case RowClicked{}.Type():
		a = &RowClicked{}
	case ButtonClicked{}.Type():
		a = &ButtonClicked{}
	case CloseSidePanel{}.Type():
		return CloseSidePanel{}, nil
	case SetFilter{}.Type():
		a = &SetFilter{}
	case ChangeTab{}.Type():
		a = &ChangeTab{}
	case SetPrimaryColor{}.Type():
		a = &SetPrimaryColor{}
	case ViewDetails{}.Type():
		return ViewDetails{}, nil
	case MapReset{}.Type():
		return MapReset{}, nil
	case OpenSettings{}.Type():
		return OpenSettings{}, nil
	default:
		// upload actions only come from the upload pipeline
		return nil, fmt.Errorf("%w: %q", ErrUnknownAction, typ)
	}

	if len(payload) > 0 && string(payload) != "null" {
		if err := json.Unmarshal(payload, a); err != nil {
			return nil, fmt.Errorf("decode %s payload: %w", typ, err)
		}
	}
	return deref(a), nil
}

func deref(a Action) Action {
	switch a := a.(type) {
	case *RowClicked:
		return *a
	case *ButtonClicked:
		return *a
	case *SetFilter:
		return *a
	case *ChangeTab:
		return *a
	case *SetPrimaryColor:
		return *a
	}
	return a
}
