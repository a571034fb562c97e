package sipacket

// ViewerID tells the Console how to render a LogEntry's Data. NoViewer
// (-1) means the Console picks a default renderer for the entry type.
type ViewerID int32

const (
	NoViewer ViewerID = -1

	ViewerTitle     ViewerID = 0
	ViewerData      ViewerID = 1
	ViewerList      ViewerID = 2
	ViewerValueList ViewerID = 3
	ViewerInspector ViewerID = 4
	ViewerTable     ViewerID = 5

	ViewerWeb ViewerID = 100

	ViewerBinary ViewerID = 200

	ViewerSourceBasic      ViewerID = 300
	ViewerSourceHTML       ViewerID = 301
	ViewerSourceJava       ViewerID = 302
	ViewerSourceJavaScript ViewerID = 303
	ViewerSourcePerl       ViewerID = 304
	ViewerSourcePHP        ViewerID = 305
	ViewerSourceSQL        ViewerID = 306
	ViewerSourceXML        ViewerID = 307

	ViewerGraphicBMP  ViewerID = 400
	ViewerGraphicJPG  ViewerID = 401
	ViewerGraphicPNG  ViewerID = 402
	ViewerGraphicMeta ViewerID = 403
)

// LogEntryType distinguishes the kind of event a LogEntry carries
// (ordinary message, method enter/leave marker, warning, error, ...).
type LogEntryType int32

const (
	EntrySeparator LogEntryType = iota
	EntryEnterMethod
	EntryLeaveMethod
	EntryResetCallstack
	EntryMessage
	EntryWarning
	EntryError
	EntryInternalError
	EntryComment
	EntryVariableValue
	EntryCheckpoint
	EntryDebug
	EntryVerbose
	EntryFatal
	EntryConditional
	EntryAssert
	EntryText
	EntryBinary
	EntryGraphic
	EntrySource
	EntryObject
	EntryWebRequest
	EntryWebResponse
	EntrySystem
	EntryMemoryStatistic
	EntryDatabaseResult
)

// WatchType is the value kind a Watch packet holds.
type WatchType int32

const (
	WatchChar WatchType = iota
	WatchString
	WatchInteger
	WatchFloat
	WatchBoolean
	WatchAddress
	WatchTimestamp
	WatchObject
)

// ControlCommandType selects the action an out-of-band ControlCommand
// asks the Console to perform.
type ControlCommandType int32

const (
	ControlClearLog ControlCommandType = iota
	ControlClearWatches
	ControlClearAutoViews
	ControlClearAll
	ControlClearProcessFlow
)

// ProcessFlowType marks an enter/leave transition for a method, thread or
// process.
type ProcessFlowType int32

const (
	FlowEnterMethod ProcessFlowType = iota
	FlowLeaveMethod
	FlowEnterThread
	FlowLeaveThread
	FlowEnterProcess
	FlowLeaveProcess
)
