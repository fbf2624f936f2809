package forum

import "fmt"

// ErrUnknownForum is wrapped by lookups for slugs with no static profile.
var ErrUnknownForum = fmt.Errorf("forum: unknown forum slug")

// ResolveConfig merges a persisted source record with the static local
// profile for the same slug. Precedence, field by field:
//
//   - structural fields (base URL, platform, selectors, subforums, filters,
//     rate limit, pagination, brand/slug lists) always come from the local
//     profile, which is maintained alongside the adapter code;
//   - operational fields (active flag, priority, counters, last-scraped
//     timestamp) come from the persisted record when one exists, since
//     operators flip those at runtime.
//
// persisted may be nil (dry runs bypass the store entirely), in which case
// the local profile is returned as-is.
func ResolveConfig(local ForumSource, persisted *ForumSource) ForumSource {
	if persisted == nil {
		return local
	}
	resolved := local
	resolved.Active = persisted.Active
	resolved.Priority = persisted.Priority
	resolved.ThreadsTotal = persisted.ThreadsTotal
	resolved.LastScrapedAt = persisted.LastScrapedAt
	return resolved
}

// Profile returns the static detailed profile for slug.
func Profile(slug string) (ForumSource, error) {
	p, ok := profiles[slug]
	if !ok {
		return ForumSource{}, fmt.Errorf("%w: %q", ErrUnknownForum, slug)
	}
	return p, nil
}

// Profiles returns all static profiles, for discovery loops.
func Profiles() []ForumSource {
	out := make([]ForumSource, 0, len(profiles))
	for _, p := range profiles {
		out = append(out, p)
	}
	return out
}
