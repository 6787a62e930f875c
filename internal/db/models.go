package db

// Time columns are unix milliseconds.

type Player struct {
	Puuid        string
	Name         string
	Tag          string
	Region       string
	AccountLevel int64
	Card         string
	Title        string
	LastFetchAt  int64
	CreatedAt    int64
	UpdatedAt    int64
}

type PlayerRank struct {
	ID        string
	Puuid     string
	Tier      int64
	TierName  string
	Rr        int64
	Elo       int64
	Source    string
	FetchedAt int64
	CreatedAt int64
}

type Match struct {
	MatchID     string
	MapID       string
	MapName     string
	Mode        string
	StartedAt   int64
	DurationMs  int64
	Region      string
	Cluster     string
	SeasonID    string
	GameVersion string
	Source      string
	Teams       string
	CreatedAt   int64
	UpdatedAt   int64
}

type Performance struct {
	Puuid       string
	MatchID     string
	Name        string
	Tag         string
	TeamID      string
	AgentID     string
	AgentName   string
	MapID       string
	MapName     string
	Mode        string
	Won         bool
	Kills       int64
	Deaths      int64
	Assists     int64
	Score       int64
	DamageDealt int64
	DamageTaken int64
	Headshots   int64
	Bodyshots   int64
	Legshots    int64
	StartedAt   int64
	CreatedAt   int64
	UpdatedAt   int64
}

type TrackedPlayer struct {
	Puuid          string
	Name           string
	Tag            string
	Region         string
	ModeFilter     string
	LastBackfillAt int64
	CreatedAt      int64
	UpdatedAt      int64
}
