package utils

// SourceScore 来源信任分 = (likes - dislikes) / (likes + dislikes)，范围 [-1, 1]
// 没有任何交互时为 0
func SourceScore(likes, dislikes int) float64 {
	total := likes + dislikes
	if total <= 0 {
		return 0
	}
	return float64(likes-dislikes) / float64(total)
}
