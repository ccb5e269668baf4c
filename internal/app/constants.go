package app

// RequiredPlayers defines the number of occupied seats a round needs.
// Four-player play is structural: seat winds, claim ordering and the
// deal all assume it, so there is no short-handed mode.
const RequiredPlayers = 4
