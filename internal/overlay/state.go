package overlay

import (
	"fmt"

	"github.com/anime-shed/localens-go/pkg/issueindex"
	"github.com/anime-shed/localens-go/pkg/models"
	"github.com/anime-shed/localens-go/pkg/timecode"
)

// State is the selection and filter state of one result view.
// It is only changed through Reduce.
type State struct {
	Result      *models.AnalysisResult `json:"result,omitempty"`
	Issues      []models.Issue         `json:"issues"`
	Filter      issueindex.Filter      `json:"filter"`
	ActiveID    string                 `json:"active_id,omitempty"`
	CurrentFile int                    `json:"current_file"`
	ShowAll     bool                   `json:"show_all"`
	HasVideo    bool                   `json:"has_video"`
}

// Event is an input to Reduce
type Event interface {
	isEvent()
}

// Effect is a side effect the caller must perform after a transition
type Effect interface {
	isEffect()
}

// SeekEffect asks the media controller to move to Seconds
type SeekEffect struct {
	IssueID string
	Seconds float64
}

func (SeekEffect) isEffect() {}

type (
	// ResultLoaded replaces the whole view with a new analysis result.
	// HasVideo reports whether a playable video element backs the view.
	ResultLoaded struct {
		Result   *models.AnalysisResult
		HasVideo bool
	}
	ResultCleared struct{}

	// VideoPresenceChanged reports attaching or detaching the video element
	VideoPresenceChanged struct{ Present bool }

	// IssueClicked toggles selection of an overlay shape or card
	IssueClicked struct{ ID string }

	// MarkerClicked selects a timeline marker without toggling
	MarkerClicked struct{ ID string }

	// IssueHovered selects without seeking
	IssueHovered struct{ ID string }

	NavigateNext struct{}
	NavigatePrev struct{}

	SeverityFilterSet struct{ Severity models.Severity }
	TypeFilterSet     struct{ Type models.IssueType }
	FileFilterSet     struct{ File string }
	FiltersReset      struct{}

	FileSelected struct{ Index int }
	FileNavNext  struct{}
	FileNavPrev  struct{}

	ShowAllToggled struct{}

	// AlternativesUpdated stores generated replacement strings on an issue
	AlternativesUpdated struct {
		IssueID      string
		Alternatives []string
	}
)

func (ResultLoaded) isEvent()         {}
func (ResultCleared) isEvent()        {}
func (VideoPresenceChanged) isEvent() {}
func (IssueClicked) isEvent()         {}
func (MarkerClicked) isEvent()        {}
func (IssueHovered) isEvent()         {}
func (NavigateNext) isEvent()         {}
func (NavigatePrev) isEvent()         {}
func (SeverityFilterSet) isEvent()    {}
func (TypeFilterSet) isEvent()        {}
func (FileFilterSet) isEvent()        {}
func (FiltersReset) isEvent()         {}
func (FileSelected) isEvent()         {}
func (FileNavNext) isEvent()          {}
func (FileNavPrev) isEvent()          {}
func (ShowAllToggled) isEvent()       {}
func (AlternativesUpdated) isEvent()  {}

// Reduce applies ev to s. The input state is never mutated.
func Reduce(s State, ev Event) (State, []Effect) {
	switch e := ev.(type) {
	case ResultLoaded:
		return load(e)
	case ResultCleared:
		return State{HasVideo: s.HasVideo}, nil
	case VideoPresenceChanged:
		s.HasVideo = e.Present
		// a newly mounted element starts at zero, so the active issue is sought again
		if e.Present && s.ActiveID != "" {
			return s.selectIssue(s.ActiveID, true)
		}
	case IssueClicked:
		if e.ID == "" || e.ID == s.ActiveID {
			s.ActiveID = ""
			return s, nil
		}
		return s.selectIssue(e.ID, true)
	case MarkerClicked:
		return s.selectIssue(e.ID, true)
	case IssueHovered:
		return s.selectIssue(e.ID, false)
	case NavigateNext:
		return s.navigate(1)
	case NavigatePrev:
		return s.navigate(-1)
	case SeverityFilterSet:
		s.Filter.Severity = e.Severity
	case TypeFilterSet:
		s.Filter.Type = e.Type
	case FileFilterSet:
		s.Filter.File = e.File
	case FiltersReset:
		s.Filter.Severity = ""
		s.Filter.Type = ""
	case FileSelected:
		if e.Index >= 0 && e.Index < len(s.Files()) {
			s.CurrentFile = e.Index
		}
	case FileNavNext:
		s.CurrentFile = issueindex.Wrap(s.CurrentFile, 1, len(s.Files()))
	case FileNavPrev:
		s.CurrentFile = issueindex.Wrap(s.CurrentFile, -1, len(s.Files()))
	case ShowAllToggled:
		s.ShowAll = !s.ShowAll
	case AlternativesUpdated:
		s.Issues = replaceAlternatives(s.Issues, e.IssueID, e.Alternatives)
	}
	if s.CurrentFile < 0 {
		s.CurrentFile = 0
	}
	return s, nil
}

func load(e ResultLoaded) (State, []Effect) {
	s := State{
		Result:   e.Result,
		Issues:   e.Result.AllIssues(),
		HasVideo: e.HasVideo,
		ShowAll:  !e.Result.IsVideo(),
	}
	if !e.Result.IsVideo() {
		return s, nil
	}
	timed := issueindex.TimedSubset(s.Issues)
	if len(timed) == 0 {
		return s, nil
	}
	return s.selectIssue(timed[0].ID, true)
}

func (s State) selectIssue(id string, seek bool) (State, []Effect) {
	issue, ok := issueindex.Find(s.Issues, id)
	if !ok {
		return s, nil
	}
	s.ActiveID = id
	if !seek || !s.HasVideo || !issue.HasTimestamp() {
		return s, nil
	}
	return s, []Effect{SeekEffect{IssueID: id, Seconds: timecode.Parse(issue.Timestamp)}}
}

func (s State) navigate(delta int) (State, []Effect) {
	timed := s.Timed()
	if len(timed) == 0 {
		return s, nil
	}
	next := issueindex.Wrap(issueindex.IndexOf(timed, s.ActiveID), delta, len(timed))
	return s.selectIssue(timed[next].ID, true)
}

func replaceAlternatives(issues []models.Issue, id string, alts []string) []models.Issue {
	i := issueindex.IndexOf(issues, id)
	if i < 0 {
		return issues
	}
	out := make([]models.Issue, len(issues))
	copy(out, issues)
	out[i] = out[i].WithAlternatives(alts)
	return out
}

// IsVideo reports whether the loaded result came from video input
func (s State) IsVideo() bool {
	return s.Result.IsVideo()
}

// Filtered applies the active filters to every issue
func (s State) Filtered() []models.Issue {
	return issueindex.FilterBy(s.Issues, s.Filter)
}

// Timed is the time-ordered subset used by timeline navigation.
// It ignores filters so the timeline always spans the whole result.
func (s State) Timed() []models.Issue {
	return issueindex.TimedSubset(s.Issues)
}

// Files lists the analyzed files in first-occurrence order
func (s State) Files() []string {
	return issueindex.UniqueFiles(s.Issues)
}

// CurrentFileName is the file shown by the per-file navigator
func (s State) CurrentFileName() string {
	files := s.Files()
	if s.CurrentFile < 0 || s.CurrentFile >= len(files) {
		return ""
	}
	return files[s.CurrentFile]
}

// CardIssues is the list shown next to the media.
// Image mode with several files shows only the current file; video mode
// shows everything when ShowAll is on and otherwise just the active issue.
func (s State) CardIssues() []models.Issue {
	filtered := s.Filtered()
	if !s.IsVideo() {
		files := s.Files()
		if len(files) > 1 {
			current := s.CurrentFileName()
			return keep(filtered, func(i models.Issue) bool { return i.FrameURL == current })
		}
		return filtered
	}
	if s.ShowAll {
		return filtered
	}
	return keep(filtered, func(i models.Issue) bool { return s.ActiveID != "" && i.ID == s.ActiveID })
}

// OverlayIssues is the set drawn over the media. It matches CardIssues.
func (s State) OverlayIssues() []models.Issue {
	return s.CardIssues()
}

// ActiveIndex is the active issue's position in the timed subset, or -1
func (s State) ActiveIndex() int {
	return issueindex.IndexOf(s.Timed(), s.ActiveID)
}

// IndexLabel renders the navigator counter, "0/0" when nothing is timed
func (s State) IndexLabel() string {
	n := len(s.Timed())
	if n == 0 {
		return "0/0"
	}
	return fmt.Sprintf("%d/%d", s.ActiveIndex()+1, n)
}

// SeverityCounts tallies the whole result regardless of filters
func (s State) SeverityCounts() issueindex.SeverityCounts {
	return issueindex.CountSeverities(s.Issues)
}

// Active returns the selected issue
func (s State) Active() (models.Issue, bool) {
	return issueindex.Find(s.Issues, s.ActiveID)
}

func keep(issues []models.Issue, pred func(models.Issue) bool) []models.Issue {
	out := make([]models.Issue, 0, len(issues))
	for _, i := range issues {
		if pred(i) {
			out = append(out, i)
		}
	}
	return out
}
