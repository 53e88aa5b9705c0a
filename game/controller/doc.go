// Package controller runs a single memory game round on behalf of one
// player.
//
// A Controller owns an engine.Engine and everything around it that needs
// time: the one-second tick, the delay before a mismatched pair is turned
// back, and the delay before the victory summary is shown. Those are
// clock.Handle values; Restart stops them and every callback also checks
// the GameID of the round it was scheduled for, so nothing from an old
// round can touch the new one.
//
// When the last pair is matched the controller stops the ticker, records
// the move count in its score.Store if it beats the stored best, updates
// the scoreboard and shows the summary half a second later.
//
// Display goes through the Presenter interface:
//
//	c := controller.New("a1b2/cosmic", eng,
//		controller.WithPresenter(hubPresenter),
//		controller.WithStore(scores),
//	)
//	c.Start()
//	c.Click(3)
package controller
