// Package extlogin implements external login against OAuth2 providers via
// the authorization-code handshake: Strava, Slack, TripIt, and Jawbone.
//
// A Handler pairs one provider with the generic handshake machinery: CSRF
// correlation, sealed round-trip state, code-for-token exchange, profile
// fetch, and claims mapping. The application plugs in through three hooks;
// only OnSignIn, which establishes the session, is required.
//
//	key, _ := security.GenerateStateKey()
//
//	provider, err := strava.NewProvider(&strava.Config{
//		ClientID:     os.Getenv("STRAVA_CLIENT_ID"),
//		ClientSecret: os.Getenv("STRAVA_CLIENT_SECRET"),
//	})
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	handler, err := extlogin.NewHandler(&extlogin.Config{
//		Provider: provider,
//		StateKey: key,
//		Hooks: extlogin.Hooks{
//			OnSignIn: func(ctx context.Context, w http.ResponseWriter, r *http.Request, id *providers.Identity, tok *oauth2.Token) error {
//				return sessions.Create(w, id.Provider, id.UserID)
//			},
//		},
//		Next: mux,
//	})
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	http.ListenAndServe(":8080", handler)
//
// The handshake starts with handler.Challenge, typically from a login route:
//
//	mux.HandleFunc("/login/strava", func(w http.ResponseWriter, r *http.Request) {
//		handler.Challenge(w, r, extlogin.ChallengeOptions{RedirectTarget: "/"})
//	})
//
// Handlers for several providers chain through the Next field; each one
// claims only its own callback path.
package extlogin
