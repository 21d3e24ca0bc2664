package entity

import (
	"fmt"
	"net/url"
	"strings"
)

// Channel identifies a streaming channel extracted from a URL.
type Channel struct {
	Platform Platform
	ID       string
}

// ParseChannelURL recognises YouTube (@handle, /channel/<id>, /c/<name>, /user/<name>)
// and Twitch (twitch.tv/<login>) channel URLs.
func ParseChannelURL(raw string) (Channel, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return Channel{}, fmt.Errorf("%w: empty", ErrUnrecognizedChannel)
	}
	if !strings.Contains(raw, "://") {
		raw = "https://" + raw
	}

	u, err := url.Parse(raw)
	if err != nil {
		return Channel{}, fmt.Errorf("%w: %v", ErrUnrecognizedChannel, err)
	}

	host := strings.TrimPrefix(strings.ToLower(u.Hostname()), "www.")
	host = strings.TrimPrefix(host, "m.")
	segments := strings.FieldsFunc(u.Path, func(r rune) bool { return r == '/' })

	switch host {
	case "youtube.com":
		if ch, ok := youtubeChannel(segments); ok {
			return ch, nil
		}
	case "twitch.tv":
		if len(segments) >= 1 && validTwitchLogin(segments[0]) {
			return Channel{Platform: PlatformTwitch, ID: strings.ToLower(segments[0])}, nil
		}
	}

	return Channel{}, fmt.Errorf("%w: %s", ErrUnrecognizedChannel, raw)
}

func youtubeChannel(segments []string) (Channel, bool) {
	if len(segments) == 0 {
		return Channel{}, false
	}
	first := segments[0]
	if strings.HasPrefix(first, "@") && len(first) > 1 {
		return Channel{Platform: PlatformYouTube, ID: first}, true
	}
	if len(segments) < 2 || segments[1] == "" {
		return Channel{}, false
	}
	switch first {
	case "channel", "c", "user":
		return Channel{Platform: PlatformYouTube, ID: segments[1]}, true
	}
	return Channel{}, false
}

var twitchReserved = map[string]bool{
	"directory": true,
	"videos":    true,
	"settings":  true,
	"search":    true,
	"downloads": true,
}

func validTwitchLogin(s string) bool {
	if s == "" || twitchReserved[strings.ToLower(s)] {
		return false
	}
	for _, r := range s {
		if !(r == '_' || r >= '0' && r <= '9' || r >= 'a' && r <= 'z' || r >= 'A' && r <= 'Z') {
			return false
		}
	}
	return true
}
