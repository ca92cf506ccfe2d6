/*
Package shipyard builds Endless Sky plugin archives from game data.

A generation request combines two sources of data files: the baseline
dataset (the stable game data, fetched once per session and reused) and the
documents a user uploaded to their session. The combined collection is handed
to a generator, which turns it into a zip archive ready to drop into the game's
plugin folder.

# Concept

  - Sessions hold the uploaded documents and the baseline latch.
  - Generators are registered in a catalog by kind. Each declares the
    configuration fields it accepts; every invalid field is reported at once,
    before any data is fetched.
  - A generator failure, including a panic, becomes a *domain.InvocationError
    and nothing is delivered.

# Usage

	svc, err := shipyard.New(
		shipyard.WithFetcher(baseline.NewFSFetcher(os.DirFS("./endless-sky"))),
	)
	if err != nil {
		log.Fatal(err)
	}

	ctx := context.Background()
	sess, _ := svc.Sessions.Start(ctx)
	sess.Uploads.Add(ctx, "my_systems.txt", "text/plain", data)

	artifact, err := svc.Generate(ctx, sess.ID, pipeline.Request{
		Kind:            domain.KindChaos,
		IncludeBaseline: true,
		Fields:          map[string]any{"seed": "42"},
	}, delivery.NewDirDeliverer("out"))

The cmd/shipyard binary exposes the same operations over HTTP, MCP and the
command line.
*/
package shipyard
