// Package journal keeps an append-only SQLite record of Tulip Mania games.
//
// Each dealt game gets a row in games; every applied action is appended to
// actions; the final standings are written when the game ends. The journal
// is a read-only history for result listings and offline analysis. Sessions
// are never restored from it.
//
//	j, err := journal.Open("tulips.db")
//	if err != nil {
//		log.Fatal(err)
//	}
//	defer j.Close()
//
//	svc := service.NewGameService(sessions, configs, service.WithRecorder(j))
package journal
