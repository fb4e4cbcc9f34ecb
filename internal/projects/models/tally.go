package models

import id "civreg/pkg/domain"

// Tally is the engagement counter pair for one project. The zero value means
// "no reactions yet", so callers can sum tallies without nil guards.
type Tally struct {
	Like    int64 `json:"like"`
	Dislike int64 `json:"dislike"`
}

// Add folds another tally into this one.
func (t Tally) Add(other Tally) Tally {
	t.Like += other.Like
	t.Dislike += other.Dislike
	return t
}

// CountReactions tallies the reactions of a single project. Unknown kinds are
// ignored rather than counted.
func CountReactions(reactions []Reaction) Tally {
	var t Tally
	for _, r := range reactions {
		switch r.Kind {
		case ReactionLike:
			t.Like++
		case ReactionDislike:
			t.Dislike++
		}
	}
	return t
}

// TallyByProject groups reactions by project id. Projects without reactions
// are simply absent; lookups on the result yield the zero Tally.
func TallyByProject(reactions []Reaction) map[id.ProjectID]Tally {
	out := make(map[id.ProjectID]Tally)
	for _, r := range reactions {
		t := out[r.ProjectID]
		switch r.Kind {
		case ReactionLike:
			t.Like++
		case ReactionDislike:
			t.Dislike++
		}
		out[r.ProjectID] = t
	}
	return out
}

// SumTallies totals reaction counts across projects.
func SumTallies(tallies map[id.ProjectID]Tally) Tally {
	var total Tally
	for _, t := range tallies {
		total = total.Add(t)
	}
	return total
}

// FeedbackIndex maps project ids to their feedback entry counts.
type FeedbackIndex map[id.ProjectID]int

// IndexFeedback counts feedback entries per project.
func IndexFeedback(entries []Feedback) FeedbackIndex {
	idx := make(FeedbackIndex)
	for _, f := range entries {
		idx[f.ProjectID]++
	}
	return idx
}

// Count returns the feedback count for a project, zero when absent.
func (idx FeedbackIndex) Count(projectID id.ProjectID) int {
	return idx[projectID]
}
