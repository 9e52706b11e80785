package chat

// FollowGate decides whether newly committed messages may move the viewport.
// The predicate is sampled on every manual scroll event, not at commit time:
// a viewer who has scrolled up keeps their reading position while the
// transcript grows underneath, and scrolling back to the bottom rearms
// auto-scroll.
type FollowGate struct {
	atBottom bool
}

func NewFollowGate() FollowGate {
	return FollowGate{atBottom: true}
}

// Observe records the viewport position after a manual scroll. distance is
// the number of lines between the bottom edge of the view and the end of the
// content; threshold is how close still counts as "at the bottom".
func (g *FollowGate) Observe(distance, threshold int) {
	if threshold < 0 {
		threshold = 0
	}
	g.atBottom = distance <= threshold
}

// ShouldAutoScroll reports whether an append should be followed by a jump to
// the end of the transcript.
func (g *FollowGate) ShouldAutoScroll() bool {
	return g != nil && g.atBottom
}

// Rearm forces follow mode, e.g. after the viewer jumps to the end or the
// transcript is replaced wholesale on a session switch.
func (g *FollowGate) Rearm() {
	g.atBottom = true
}

// DistanceFromBottom computes the line distance used by Observe from raw
// viewport geometry.
func DistanceFromBottom(yOffset, viewHeight, contentLines int) int {
	distance := contentLines - (yOffset + viewHeight)
	if distance < 0 {
		return 0
	}
	return distance
}
