package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/goccy/go-json"

	formsubmit "github.com/goliatone/go-formsubmit"
	"github.com/goliatone/go-formsubmit/pkg/confirm"
	"github.com/goliatone/go-formsubmit/pkg/descriptor"
	"github.com/goliatone/go-formsubmit/pkg/submit"
	"github.com/goliatone/go-formsubmit/pkg/transport"
)

func main() {
	descriptors := flag.String("descriptors", "forms", "directory holding form descriptor files")
	formName := flag.String("form", "", "descriptor form name to submit")
	target := flag.String("target", "", "override the declared submit target")
	yes := flag.Bool("yes", false, "approve confirmation prompts without asking")
	flag.Parse()

	if *formName == "" {
		log.Fatal("missing required flag: -form")
	}

	store, err := descriptor.LoadFS(os.DirFS(*descriptors))
	if err != nil {
		log.Fatalf("Failed to load descriptors: %v", err)
	}
	form, ok := store.Form(*formName)
	if !ok {
		log.Fatalf("Form %q not found in %s", *formName, *descriptors)
	}
	if *target != "" {
		form.Defaults.Target = *target
	}

	var confirmer confirm.Confirmer = &confirm.Terminal{}
	if *yes {
		confirmer = confirm.Always()
	}

	options := []submit.Option{
		submit.WithConfirmer(confirmer),
		submit.WithLogger(submit.LoggerFunc(log.Printf)),
	}
	if token := os.Getenv("FORMSUBMIT_TOKEN"); token != "" {
		options = append(options, submit.WithCredentials(
			transport.StaticCredential(os.Getenv("FORMSUBMIT_TOKEN_HEADER"), token),
		))
	}

	result, err := formsubmit.SubmitForm(context.Background(), form, options...)
	if err != nil {
		log.Fatalf("Submission failed: %v", err)
	}
	if result == nil {
		// Validation stops and declined confirmations settle silently.
		return
	}

	out, err := json.MarshalIndent(result.Item, "", "  ")
	if err != nil {
		log.Fatalf("Failed to encode result: %v", err)
	}
	fmt.Println(string(out))
}
