package controllers

// NoticeLevel selects the kind of modal dialog a notice becomes
type NoticeLevel int

const (
	NoticeInfo NoticeLevel = iota
	NoticeWarning
	NoticeError
)

func (l NoticeLevel) String() string {
	switch l {
	case NoticeInfo:
		return "info"
	case NoticeWarning:
		return "warning"
	case NoticeError:
		return "error"
	default:
		return "unknown"
	}
}

// Notice is a modal message for the user
type Notice struct {
	Level   NoticeLevel
	Title   string
	Message string
}

// ViewState is everything the main window renders from workflow state
type ViewState struct {
	ApkLabel       string
	ApkSelected    bool
	ActionsEnabled bool
	Status         string
}

// Result is the outcome of one user action. Err is the PreconditionError or
// IOError behind a failed action, nil otherwise.
type Result struct {
	View    ViewState
	Notices []Notice
	Err     error
}
