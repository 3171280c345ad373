// Package blackjack implements a single-player blackjack round engine with
// Hi-Lo card counting and an extension layer for rule modules.
//
// The main types are Engine, which runs one betting round at a time (shoe
// management, action execution, dealer play, payout resolution), and
// Controller, a resumable sequence of decision prompts layered over the
// engine for drivers such as a TUI or a simulator.
//
// # Basic Usage
//
//	ext := blackjack.NewContext()
//	engine := blackjack.NewEngine(blackjack.DefaultConfig(), ext, nil, logger)
//	ctrl := blackjack.NewController(engine)
//
//	prompt := ctrl.Start()
//	for !ctrl.Done() {
//	    response := "" // answer prompts that expect input
//	    prompt = ctrl.Next(response)
//	}
//
// # Extension Layer
//
// The Context carries the event bus and rule registry. The engine publishes
// round_started, card_dealt, deck_created, deck_shuffled and round_resolved
// at fixed interception points and consults the registry for custom ranks,
// actions and statistics wherever built-in rules would otherwise be
// hardcoded. Rule modules register against the context without the engine
// depending on any specific module; see the mods package.
//
// # Deterministic Testing
//
// Pass a seeded RNG (deck.NewRNG) for reproducible shoes, or use
// StartScriptedRound to fix the dealt hands outright.
package blackjack
