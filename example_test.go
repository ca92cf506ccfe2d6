package shipyard_test

import (
	"context"
	"fmt"
	"log"

	"github.com/aretw0/shipyard"
	"github.com/aretw0/shipyard/pkg/domain"
	"github.com/aretw0/shipyard/pkg/pipeline"
	"github.com/aretw0/shipyard/pkg/schema"
)

func Example() {
	svc, err := shipyard.New()
	if err != nil {
		log.Fatal(err)
	}

	ctx := context.Background()
	sess, err := svc.Sessions.Start(ctx)
	if err != nil {
		log.Fatal(err)
	}

	artifact, err := svc.Generate(ctx, sess.ID, pipeline.Request{Kind: domain.KindTemplate}, nil)
	if err != nil {
		log.Fatal(err)
	}
	fmt.Println(artifact.Filename)
	// Output: plugin_template.zip
}

func Example_validation() {
	svc, err := shipyard.New()
	if err != nil {
		log.Fatal(err)
	}

	ctx := context.Background()
	sess, err := svc.Sessions.Start(ctx)
	if err != nil {
		log.Fatal(err)
	}

	_, err = svc.Generate(ctx, sess.ID, pipeline.Request{
		Kind:   domain.KindSystemShuffler,
		Fields: map[string]any{"max_presets": "300", "shuffle_chance": "50"},
	}, nil)
	for _, fe := range schema.FieldErrors(err) {
		fmt.Printf("%s: %s\n", fe.Key, fe.Reason)
	}
	// Output:
	// max_presets: must be between 1 and 255, got 300
	// seed: required
}
