package bot

import "fmt"

// NewBrain creates a strategy for the level. A remote level without
// endpoint configuration degrades to the standard local strategy.
func NewBrain(level BotLevel, remote *RemoteConfig) (Brain, error) {
	switch level {
	case BotLevelEasy:
		return &EasyBrain{}, nil
	case BotLevelStandard:
		return NewStandardBrain(), nil
	case BotLevelRemote:
		if remote == nil || remote.Endpoint == "" {
			return NewStandardBrain(), nil
		}
		return NewRemoteBrain(*remote), nil
	default:
		return nil, fmt.Errorf("unknown bot level: %d", level)
	}
}
