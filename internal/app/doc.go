// Package app is the composition root for the crown client.
//
// Run loads the configuration, builds the node client, the signer bridge
// session, the journal and the sync controller, then starts the poller and
// hands the terminal to the UI:
//
//	Run()
//	 ├─> config.Load()          ~/.config/crown/config.toml + CROWN_* env
//	 ├─> stacks.NewClient()     read-only contract calls
//	 ├─> wallet.NewSession()    resumes an existing bridge session
//	 ├─> journal.Open()         SQLite record of reigns and claims
//	 ├─> state.New()            the mirror and the pending-claim flag
//	 ├─> controller.Initialize  first fetch, in the background
//	 ├─> StartPoller()          controller.Tick every PollInterval
//	 └─> ui.Run()               blocks until quit or ctx is done
//
// With Options.Once set, Run performs one read, prints it and returns; no
// log redirection, wallet or journal is involved.
//
// Read failures never end Run. They are logged to <log_dir>/crown.log and
// the next tick retries.
package app
