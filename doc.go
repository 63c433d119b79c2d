// Package ragchat is a retrieval-augmented question answering core for a
// bilingual (English/Nepali) knowledge base.
//
// Documents are chunked, embedded and stored in a vector index, either an
// in-process one or a Redis/Valkey index with a search module. Questions
// are answered extractively: the best matching chunks are retrieved and a
// rule-based extractor picks the lines that answer the question, so no
// language model is involved in producing the reply.
//
//	client, _ := ragchat.New(ctx)                    // in-memory index, local embedder
//	_, _ = client.AddDocuments(ctx, ragchat.SampleDocuments())
//	resp := client.Chat(ctx, "What is the fee for the senior citizen ID card?")
//	fmt.Println(resp.Response)
//
// With a persistent index and an OpenAI-compatible embedding API:
//
//	client, _ := ragchat.New(ctx,
//	    ragchat.WithValkey("localhost:6379", ""),
//	    ragchat.WithOpenAI("", os.Getenv("OPENAI_API_KEY"), "text-embedding-3-small"),
//	    ragchat.WithVectorDimensions(1536),
//	)
package ragchat
