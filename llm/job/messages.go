package job

// DefaultMessages 是视频任务等待期间轮播的进度提示，按顺序循环。
var DefaultMessages = []string{
	"Warming up the animation engine...",
	"Sketching the keyframes...",
	"Adding digital ink and paint...",
	"Rendering the final cut...",
	"Polishing the pixels...",
	"This is taking a bit longer than usual, but good things are coming!",
	"Finalizing the masterpiece...",
}

// FetchingMessage is emitted once after the job reaches Done.
const FetchingMessage = "Fetching your video..."

// MessageAt returns the message shown at tick i: list[i mod N].
func MessageAt(list []string, i uint) string {
	if len(list) == 0 {
		return ""
	}
	return list[i%uint(len(list))]
}
