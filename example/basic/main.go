package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log"

	"github.com/siherrmann/wbupdate"
	"github.com/siherrmann/wbupdate/core/diff"
	"github.com/siherrmann/wbupdate/core/update"
	"github.com/siherrmann/wbupdate/helper"
	"github.com/siherrmann/wbupdate/model"
)

func main() {
	// Start a test PostgreSQL container
	teardown, dbPort, err := helper.MustStartPostgresContainer()
	if err != nil {
		log.Fatalf("Failed to start PostgreSQL container: %v", err)
	}
	defer teardown(context.Background())

	// Create database configuration using the container port
	dbConfig := &helper.DatabaseConfiguration{
		Host:     "localhost",
		Port:     dbPort,
		Database: "database",
		Username: "user",
		Password: "password",
		Schema:   "public",
		SSLMode:  "disable",
	}

	u, err := wbupdate.NewUpdater(dbConfig)
	if err != nil {
		log.Fatalf("Failed to create updater: %v", err)
	}
	defer u.Close()

	q42 := model.MustParseEntityID("Q42", model.SiteWikidata)
	p31 := model.MustParseEntityID("P31", model.SiteWikidata)
	human := model.MustParseEntityID("Q5", model.SiteWikidata)

	// Store the revision the edit is based on
	_, err = u.StoreRevision(&model.ItemDocument{
		ID:           q42,
		RevisionID:   1001,
		Labels:       model.TermMap(model.Term{Language: "en", Text: "Douglas Adams"}),
		Descriptions: model.TermMap(model.Term{Language: "en", Text: "writer"}),
		Aliases: map[string][]model.Term{
			"en": {{Language: "en", Text: "DNA"}},
		},
		SiteLinks: map[string]model.SiteLink{
			"enwiki": {Site: "enwiki", Title: "Douglas Adams"},
		},
	})
	if err != nil {
		log.Fatalf("Failed to store revision: %v", err)
	}

	b, err := u.NewUpdateBuilder(context.Background(), q42)
	if err != nil {
		log.Fatalf("Failed to create builder: %v", err)
	}
	item, ok := b.(update.TermedStatementDocumentUpdateBuilder)
	if !ok {
		log.Fatalf("Builder for %s has no terms", q42)
	}

	// The label is unchanged against the base, so only the description is sent
	terms := diff.NewTermUpdateBuilder()
	must(terms.SetTerm(model.Term{Language: "en", Text: "Douglas Adams"}))
	must(terms.SetTerm(model.Term{Language: "de", Text: "Douglas Adams"}))
	labels, err := terms.Build()
	must(err)
	must(item.UpdateLabels(labels))

	descriptions := diff.NewTermUpdateBuilder()
	must(descriptions.SetTerm(model.Term{Language: "en", Text: "English writer and humorist"}))
	descriptionUpdate, err := descriptions.Build()
	must(err)
	must(item.UpdateDescriptions(descriptionUpdate))

	aliases := diff.NewAliasUpdateBuilder()
	must(aliases.Add(model.Term{Language: "en", Text: "Douglas Noël Adams"}))
	aliasUpdate, err := aliases.Build()
	must(err)
	must(item.SetAliases("en", aliasUpdate))

	statements, err := diff.NewStatementUpdateBuilderForSubject(q42)
	must(err)
	must(statements.AddStatement(model.Statement{
		Subject:  q42,
		MainSnak: model.NewValueSnak(p31, model.EntityIDValue{ID: human}),
	}))
	statementUpdate, err := statements.Build()
	must(err)
	must(item.UpdateStatements(statementUpdate))

	built, err := item.BuildUpdate()
	if err != nil {
		log.Fatalf("Failed to build update: %v", err)
	}

	payload, err := json.MarshalIndent(built, "", "  ")
	must(err)
	fmt.Printf("Update of %s against revision %d:\n%s\n", built.EntityID(), built.BaseRevisionID(), payload)

	queued, err := u.QueueUpdate(built, model.Metadata{model.MetadataSummary: "describe Q42"})
	if err != nil {
		log.Fatalf("Failed to queue update: %v", err)
	}
	fmt.Printf("Queued update %s\n", queued.RID)

	fmt.Println("\nBasic example completed successfully!")
}

func must(err error) {
	if err != nil {
		log.Fatal(err)
	}
}
