package inbox

import (
	"sort"

	"github.com/samber/lo"

	"gleam-inbox/internal/message"
)

// Merge produces the single list shown to a viewer: a fresh historical
// pull combined with the persisted webhook feed.
//
// Historical messages authored by the viewer's own account are dropped
// (received DMs only), as are empty ones. The combined list is then
// deduplicated on the (username, content, timestamp) identity triple —
// first occurrence wins — and sorted newest first. A message whose
// timestamp does not parse sorts as the oldest possible value.
func Merge(historical, stored []message.Message, viewer string) []message.Message {
	self := message.UsernamePrefix + viewer

	received := lo.Filter(historical, func(m message.Message, _ int) bool {
		return m.Content != "" && m.Username != self
	})

	combined := append(received, stored...)
	deduped := lo.UniqBy(combined, message.Message.Key)

	sort.SliceStable(deduped, func(i, j int) bool {
		return message.SortTime(deduped[i]).After(message.SortTime(deduped[j]))
	})
	return deduped
}
