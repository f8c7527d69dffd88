package constants

import "time"

const (
	// GameTopic is the log topic shared by every Fortress Overlord client
	GameTopic string = "FORTRESS_OVERLORD_V1"

	// MapWidth is the extent of the battlefield along x
	MapWidth float64 = 40.0
	// MapDepth is the extent of the battlefield along z
	MapDepth float64 = 50.0
	// FortressInset is the distance from the map edge to a fortress
	FortressInset float64 = 2.0
	// SpawnInset is the distance from the map edge to the spawn lane
	SpawnInset float64 = 5.0
	// SpawnMargin keeps spawned units away from the side edges
	SpawnMargin float64 = 4.0

	// PlayerOneColor
	PlayerOneColor uint32 = 0x007bff
	// PlayerTwoColor
	PlayerTwoColor uint32 = 0xff4136

	// MatchmakingTimeout is how long a client waits for a peer before
	// falling back to the synthetic opponent
	MatchmakingTimeout time.Duration = 30 * time.Second
	// CountdownInterval is how often the remaining wait is reported
	CountdownInterval time.Duration = time.Second
	// LobbyPollInterval is the event poll interval while matchmaking
	LobbyPollInterval time.Duration = time.Second
	// GamePollInterval is the event poll interval during a match
	GamePollInterval time.Duration = 500 * time.Millisecond
	// AITickInterval is how often the synthetic opponent acts
	AITickInterval time.Duration = 2 * time.Second
	// ResourceTickInterval is how often resources are generated
	ResourceTickInterval time.Duration = time.Second
	// FrameInterval is the local simulation step
	FrameInterval time.Duration = time.Second / 60

	// DefaultReadLimit is the number of latest entries returned by a read without a cursor
	DefaultReadLimit int = 50
)

// PlayerColors is indexed by player id.
var PlayerColors = [2]uint32{PlayerOneColor, PlayerTwoColor}
