package sim

import (
	"time"
)

// SystemSenderEmail is the address automated notification emails are sent
// from.
const SystemSenderEmail = "system.notifications@cubicle.local"

// Config carries every interval and probability threshold that drives the
// autonomous triggers. The randomized ranges and percentage gates are
// product behavior, not incidental nondeterminism, so they are all explicit
// and tunable here.
type Config struct {
	// SpontaneousEmailMin/Jitter bound the delay between spontaneous
	// persona-to-persona emails: min plus a random fraction of jitter.
	SpontaneousEmailMin    time.Duration
	SpontaneousEmailJitter time.Duration

	// ProjectQueryMin/Jitter bound the delay between project status
	// query emails.
	ProjectQueryMin    time.Duration
	ProjectQueryJitter time.Duration

	// ProjectWorkMin/Jitter bound the delay between project
	// contribution emails.
	ProjectWorkMin    time.Duration
	ProjectWorkJitter time.Duration

	// SocialMin/Jitter bound the delay between social feed activities.
	SocialMin    time.Duration
	SocialJitter time.Duration

	// HighEngagementChance is the probability a spontaneous email
	// requests longer, more involved content.
	HighEngagementChance float64

	// SocialPostChance is the probability a social tick creates a post.
	// A post is always created when the feed is empty.
	SocialPostChance float64

	// SocialCommentChance is the additional probability band for
	// commenting: a tick with roll in [SocialPostChance,
	// SocialPostChance+SocialCommentChance) comments, anything above is
	// a no-op.
	SocialCommentChance float64

	// CompanyPostChance is the probability the community manager posts
	// as the company profile instead of themselves.
	CompanyPostChance float64

	// ChainReplyChance is the probability an AI email triggers another
	// AI reply.
	ChainReplyChance float64

	// ChainReplyMaxDepth caps recursive AI-to-AI reply chains.
	ChainReplyMaxDepth int

	// ChainReplyDelayMin/Jitter bound the delay before a chained reply.
	ChainReplyDelayMin    time.Duration
	ChainReplyDelayJitter time.Duration

	// IMReplyChance is the per-persona probability of replying to a
	// human IM message.
	IMReplyChance float64

	// IMReplyDelayMin/Jitter bound the delay before an IM reply lands.
	IMReplyDelayMin    time.Duration
	IMReplyDelayJitter time.Duration

	// SideActionDelay is how long after the primary content commits a
	// carried side action executes.
	SideActionDelay time.Duration

	// ResumeStagger is the inter-task delay when draining the paused
	// action queue.
	ResumeStagger time.Duration

	// ReminderWindow is how far ahead of an event's start the one-time
	// reminder broadcast goes out.
	ReminderWindow time.Duration

	// CommunityManagerEmail identifies the persona who sometimes posts
	// as the company. Empty disables company posts.
	CommunityManagerEmail string
}

// DefaultConfig mirrors the stock trigger cadence: spontaneous email every
// 2-4 minutes, project queries every 2.5-4.5, contributions every 3-5.5,
// social activity every 4-7, 40% reply chains 20-40s apart capped at depth
// 2, and 70% IM replies 8-15s after a human message.
func DefaultConfig() Config {
	return Config{
		SpontaneousEmailMin:    2 * time.Minute,
		SpontaneousEmailJitter: 2 * time.Minute,
		ProjectQueryMin:        150 * time.Second,
		ProjectQueryJitter:     2 * time.Minute,
		ProjectWorkMin:         3 * time.Minute,
		ProjectWorkJitter:      150 * time.Second,
		SocialMin:              4 * time.Minute,
		SocialJitter:           3 * time.Minute,

		HighEngagementChance: 0.2,
		SocialPostChance:     0.2,
		SocialCommentChance:  0.4,
		CompanyPostChance:    0.3,

		ChainReplyChance:      0.4,
		ChainReplyMaxDepth:    2,
		ChainReplyDelayMin:    20 * time.Second,
		ChainReplyDelayJitter: 20 * time.Second,

		IMReplyChance:      0.7,
		IMReplyDelayMin:    8 * time.Second,
		IMReplyDelayJitter: 7 * time.Second,

		SideActionDelay: time.Second,
		ResumeStagger:   500 * time.Millisecond,
		ReminderWindow:  24 * time.Hour,
	}
}
