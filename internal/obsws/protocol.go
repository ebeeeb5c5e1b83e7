package obsws

import "encoding/json"

// OpCode identifies the kind of an obs-websocket v5 frame.
type OpCode int

const (
	OpHello           OpCode = 0
	OpIdentify        OpCode = 1
	OpIdentified      OpCode = 2
	OpReidentify      OpCode = 3
	OpEvent           OpCode = 5
	OpRequest         OpCode = 6
	OpRequestResponse OpCode = 7
)

// RPCVersion is the obs-websocket RPC version this client speaks.
const RPCVersion = 1

// Subprotocol is the websocket subprotocol for JSON encoded frames.
const Subprotocol = "obswebsocket.json"

// Event subscription bits sent in Identify.
const (
	EventSubGeneral     uint32 = 1 << 0
	EventSubConfig      uint32 = 1 << 1
	EventSubScenes      uint32 = 1 << 2
	EventSubInputs      uint32 = 1 << 3
	EventSubTransitions uint32 = 1 << 4
	EventSubFilters     uint32 = 1 << 5
	EventSubOutputs     uint32 = 1 << 6
	EventSubSceneItems  uint32 = 1 << 7
	EventSubMediaInputs uint32 = 1 << 8
	EventSubVendors     uint32 = 1 << 9
	EventSubUI          uint32 = 1 << 10

	EventSubAll = EventSubGeneral | EventSubConfig | EventSubScenes | EventSubInputs |
		EventSubTransitions | EventSubFilters | EventSubOutputs | EventSubSceneItems |
		EventSubMediaInputs | EventSubVendors | EventSubUI

	// DefaultEventSubscriptions covers every event the mirrors consume.
	DefaultEventSubscriptions = EventSubScenes | EventSubInputs | EventSubFilters
)

// Request types used by the remote control.
const (
	RequestGetSceneList           = "GetSceneList"
	RequestSetCurrentProgramScene = "SetCurrentProgramScene"
	RequestGetInputList           = "GetInputList"
	RequestGetInputMute           = "GetInputMute"
	RequestToggleInputMute        = "ToggleInputMute"
	RequestGetSourceFilterList    = "GetSourceFilterList"
	RequestSetSourceFilterEnabled = "SetSourceFilterEnabled"
)

// Event types consumed by the remote control.
const (
	EventCurrentProgramSceneChanged = "CurrentProgramSceneChanged"
	EventInputMuteStateChanged      = "InputMuteStateChanged"
)

// StatusSuccess is the requestStatus code of a successful request.
const StatusSuccess = 100

// message is the envelope of every frame on the wire.
type message struct {
	Op   OpCode          `json:"op"`
	Data json.RawMessage `json:"d"`
}

type hello struct {
	OBSWebSocketVersion string `json:"obsWebSocketVersion"`
	RPCVersion          int    `json:"rpcVersion"`
	Authentication      *struct {
		Challenge string `json:"challenge"`
		Salt      string `json:"salt"`
	} `json:"authentication,omitempty"`
}

type identify struct {
	RPCVersion         int    `json:"rpcVersion"`
	Authentication     string `json:"authentication,omitempty"`
	EventSubscriptions uint32 `json:"eventSubscriptions"`
}

type identified struct {
	NegotiatedRPCVersion int `json:"negotiatedRpcVersion"`
}

type event struct {
	EventType   string          `json:"eventType"`
	EventIntent uint32          `json:"eventIntent"`
	EventData   json.RawMessage `json:"eventData,omitempty"`
}

type request struct {
	RequestType string `json:"requestType"`
	RequestID   string `json:"requestId"`
	RequestData any    `json:"requestData,omitempty"`
}

type requestStatus struct {
	Result  bool   `json:"result"`
	Code    int    `json:"code"`
	Comment string `json:"comment,omitempty"`
}

type requestResponse struct {
	RequestType   string          `json:"requestType"`
	RequestID     string          `json:"requestId"`
	RequestStatus requestStatus   `json:"requestStatus"`
	ResponseData  json.RawMessage `json:"responseData,omitempty"`
}

// Close codes sent by obs-websocket when it drops a session.
const (
	CloseUnknownReason         = 4000
	CloseMessageDecodeError    = 4002
	CloseMissingDataField      = 4003
	CloseInvalidDataFieldType  = 4004
	CloseInvalidDataFieldValue = 4005
	CloseUnknownOpCode         = 4006
	CloseNotIdentified         = 4007
	CloseAlreadyIdentified     = 4008
	CloseAuthenticationFailed  = 4009
	CloseUnsupportedRPCVersion = 4010
	CloseSessionInvalidated    = 4011
	CloseUnsupportedFeature    = 4012
)

var closeReasons = map[int]string{
	CloseUnknownReason:         "unknown reason",
	CloseMessageDecodeError:    "message decode error",
	CloseMissingDataField:      "missing data field",
	CloseInvalidDataFieldType:  "invalid data field type",
	CloseInvalidDataFieldValue: "invalid data field value",
	CloseUnknownOpCode:         "unknown op code",
	CloseNotIdentified:         "not identified",
	CloseAlreadyIdentified:     "already identified",
	CloseAuthenticationFailed:  "authentication failed",
	CloseUnsupportedRPCVersion: "unsupported rpc version",
	CloseSessionInvalidated:    "session invalidated",
	CloseUnsupportedFeature:    "unsupported feature",
}
