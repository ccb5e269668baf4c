package main

import (
	"context"
	"database/sql"

	"mahjong/internal/ports/nakama"

	"github.com/heroiclabs/nakama-common/runtime"
)

// InitModule proxies Nakama initialization to the nakama adapter package.
func InitModule(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, initializer runtime.Initializer) error {
	return nakama.InitModule(ctx, logger, db, nk, initializer)
}

// main is unused: this package is compiled as a Nakama runtime plugin, which
// loads InitModule and never invokes main. It exists so `go build` succeeds.
func main() {}
