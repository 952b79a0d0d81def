package media

import (
	"net/url"
	"regexp"
	"strings"
)

// squatUniversity matches lower-body, hinge and barbell lifts.
var squatUniversity = regexp.MustCompile(`squat|deadlift|hip.?hinge|hip.?thrust|rdl|romanian|single.?leg|lunge|goblet|sumo|front.?squat|box.?squat|clean|snatch|overhead.?press|military.?press|split.?squat|bulgarian|step.?up|leg.?press`)

// TutorialURL returns a YouTube search for a form tutorial on the exercise.
func TutorialURL(exerciseName string) string {
	query := exerciseName + " proper form tutorial"
	if squatUniversity.MatchString(strings.ToLower(exerciseName)) {
		query = "squat university " + exerciseName
	}
	return "https://www.youtube.com/results?search_query=" + strings.ReplaceAll(url.QueryEscape(query), "+", "%20")
}
