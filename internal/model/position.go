package model

// Position is a row of the remote positions resource. PositionID is assigned
// by the server and never changed by the console.
type Position struct {
	PositionID   int64  `json:"position_id"`
	PositionCode string `json:"position_code"`
	PositionName string `json:"position_name"`
}

// PositionInput is the partial payload sent on create and update. Empty
// fields are left out so the server can apply its own defaults.
type PositionInput struct {
	PositionCode string `json:"position_code,omitempty"`
	PositionName string `json:"position_name,omitempty"`
}

// FormState is the create/edit form. A nil EditingID means create mode.
type FormState struct {
	EditingID    *int64 `json:"editing_id,omitempty"`
	PositionCode string `json:"position_code"`
	PositionName string `json:"position_name"`
}

func (f FormState) IsEditing() bool {
	return f.EditingID != nil
}

func (f FormState) Input() PositionInput {
	return PositionInput{PositionCode: f.PositionCode, PositionName: f.PositionName}
}
