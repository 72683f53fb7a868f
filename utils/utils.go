package utils

import (
	// Go Internal Packages
	"sort"
	"strconv"
	"strings"
)

// FormatAssignment renders topic partitions as "topic[0,1,2]", sorted for stable logs.
func FormatAssignment(assignment map[string][]int32) string {
	topics := make([]string, 0, len(assignment))
	for topic := range assignment {
		topics = append(topics, topic)
	}
	sort.Strings(topics)

	parts := make([]string, 0, len(topics))
	for _, topic := range topics {
		partitions := append([]int32(nil), assignment[topic]...)
		sort.Slice(partitions, func(i, j int) bool { return partitions[i] < partitions[j] })

		strs := make([]string, len(partitions))
		for i, p := range partitions {
			strs[i] = strconv.FormatInt(int64(p), 10)
		}
		parts = append(parts, topic+"["+strings.Join(strs, ",")+"]")
	}
	return strings.Join(parts, " ")
}
