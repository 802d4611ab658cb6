package types

// MissingVideo marks a scene whose video generation failed after its
// character image resolved. An empty VideoURL means the scene never got
// past image generation.
const MissingVideo = "missing"

// Scene is one narrative unit of the storyboard. The prompt fields are
// authored by the planner; the URL fields are filled in by the chainer.
type Scene struct {
	Title           string `json:"scene_title"`
	Description     string `json:"scene_description"`
	CharacterPrompt string `json:"character_prompt"`
	SettingPrompt   string `json:"setting_prompt"`
	MotionPrompt    string `json:"motion_prompt"`

	CharacterImageURL string `json:"character_image_url,omitempty"`
	VideoURL          string `json:"video_url,omitempty"`
}

// HasVideo reports whether the scene resolved a usable clip reference.
func (s *Scene) HasVideo() bool {
	return s.VideoURL != "" && s.VideoURL != MissingVideo
}

// Storyboard is the ordered scene plan for one reel
type Storyboard struct {
	Title  string  `json:"title"`
	Theme  string  `json:"theme"`
	Scenes []Scene `json:"scenes"`
}

// Caption holds the social caption and hashtag set for a finished reel
type Caption struct {
	Caption  string   `json:"caption"`
	Hashtags []string `json:"hashtags"`
}

// PipelineState tracks the full state of one pipeline run
type PipelineState struct {
	RunID       string      `json:"run_id"`
	Theme       string      `json:"theme"`
	State       string      `json:"state"`
	StartedAt   string      `json:"started_at"`
	CompletedAt string      `json:"completed_at,omitempty"`
	Storyboard  *Storyboard `json:"storyboard,omitempty"`
	ReelFile    string      `json:"reel_file,omitempty"`
	Caption     *Caption    `json:"caption,omitempty"`
	PostURL     string      `json:"post_url,omitempty"`
	Error       string      `json:"error,omitempty"`
}
