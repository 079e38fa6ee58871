package core

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"strconv"
	"strings"
	"time"

	"github.com/recallhq/recall/internal/cache"
	"github.com/recallhq/recall/internal/llm"
	"github.com/recallhq/recall/internal/metrics"
	"github.com/recallhq/recall/internal/store"
)

// LLMClient is the slice of the LLM surface the services need. Satisfied by
// *llm.Client; tests substitute fakes.
type LLMClient interface {
	Complete(ctx context.Context, messages []llm.Message, opts llm.Options) (string, error)
	GetEmbedding(ctx context.Context, text string) ([]float32, error)
	GenerateTitle(ctx context.Context, basisContent string) (string, error)
	DefaultModel() string
}

const (
	analysisTemperature = 0.3
	maxSegments         = 5

	techniqueConfidence = 0.7
	maxTechniques       = 3

	defaultConceptConfidence = 0.8
)

// ExtractRequest carries one extraction submission. Context is optional
// caller-supplied framing ("this is a mock interview") passed to the prompt.
type ExtractRequest struct {
	Content      string `json:"conversation_text"`
	Source       string `json:"source,omitempty"` // chat, youtube or manual
	Title        string `json:"title,omitempty"`
	Context      string `json:"context,omitempty"`
	CustomAPIKey string `json:"custom_api_key,omitempty"`
}

// ExtractResult is what an extraction run produced.
type ExtractResult struct {
	Conversation *store.Conversation `json:"conversation"`
	Concepts     []store.Concept     `json:"concepts"`
	SessionID    string              `json:"session_id"`
	Method       string              `json:"method"` // single_pass, multi_pass or cache
	DomainType   string              `json:"domain_type"`
	FromCache    bool                `json:"from_cache"`
}

// Extractor runs the concept extraction pipeline.
type Extractor struct {
	store   *store.PostgresStore
	llm     LLMClient
	cache   *cache.Cache
	learner *CategoryLearner
}

func NewExtractor(s *store.PostgresStore, client LLMClient, c *cache.Cache, learner *CategoryLearner) *Extractor {
	return &Extractor{store: s, llm: client, cache: c, learner: learner}
}

// analysisResponse is the JSON shape the analysis prompt asks for. Models
// drift on field placement, so standardize() repairs the common variants.
type analysisResponse struct {
	ConversationTitle   string       `json:"conversation_title"`
	ConversationSummary string       `json:"conversation_summary"`
	Summary             string       `json:"summary"`
	Concepts            []rawConcept `json:"concepts"`

	// Set before caching so a hit skips domain detection entirely.
	DomainType string `json:"domain_type,omitempty"`
}

type rawConcept struct {
	Title           string          `json:"title"`
	Category        string          `json:"category"`
	Summary         string          `json:"summary"`
	Details         string          `json:"details"`
	Insights        string          `json:"insights"`
	Implementation  string          `json:"implementation"`
	KeyPoints       []string        `json:"key_points"`
	Examples        []store.Example `json:"examples"`
	RelatedConcepts []string        `json:"related_concepts"`
	QuickRecall     *quickRecall    `json:"quick_recall"`
	KeyTakeaway     string          `json:"key_takeaway"`
	Analogy         string          `json:"analogy"`
	PracticalTips   []string        `json:"practical_tips"`
	ConfidenceScore float64         `json:"confidence_score"`
	IsTechnique     bool            `json:"-"`
	CodeSnippets    []rawSnippet    `json:"code_snippets"`
}

type quickRecall struct {
	KeyTakeaway   string   `json:"key_takeaway"`
	Analogy       string   `json:"analogy"`
	PracticalTips []string `json:"practical_tips"`
}

type rawSnippet struct {
	Language    string `json:"language"`
	Description string `json:"description"`
	Code        string `json:"code"`
}

// Extract runs the full pipeline: cache lookup, domain detection, analysis,
// concept dedup and persistence. A session row tracks the run either way.
func (e *Extractor) Extract(ctx context.Context, userID int64, req ExtractRequest) (*ExtractResult, error) {
	content := strings.TrimSpace(req.Content)
	if content == "" {
		return nil, fmt.Errorf("content is required")
	}

	m := metrics.Get()
	session := &store.AnalysisSession{UserID: userID, Status: store.SessionRunning}
	if err := e.store.CreateAnalysisSession(session); err != nil {
		log.Printf("Warning: could not create analysis session: %v", err)
	}

	result, err := e.extract(ctx, userID, content, req)
	if err != nil {
		m.ExtractionsTotal.WithLabelValues("unknown", "error").Inc()
		if session.ID != "" {
			if ferr := e.store.FinishAnalysisSession(session.ID, store.SessionFailed, nil, 0, err.Error()); ferr != nil {
				log.Printf("Warning: could not mark session failed: %v", ferr)
			}
		}
		return nil, err
	}

	result.SessionID = session.ID
	m.ExtractionsTotal.WithLabelValues(result.Method, "success").Inc()
	m.ConceptsExtracted.Add(float64(len(result.Concepts)))
	if session.ID != "" {
		var convID *string
		if result.Conversation != nil {
			convID = &result.Conversation.ID
		}
		if ferr := e.store.FinishAnalysisSession(session.ID, store.SessionCompleted, convID, len(result.Concepts), ""); ferr != nil {
			log.Printf("Warning: could not mark session completed: %v", ferr)
		}
	}
	return result, nil
}

func (e *Extractor) extract(ctx context.Context, userID int64, content string, req ExtractRequest) (*ExtractResult, error) {
	m := metrics.Get()

	var analysis *analysisResponse
	var domainType string
	method := "single_pass"
	fromCache := false

	cacheKey := cache.Key(strconv.FormatInt(userID, 10), content)
	if cached, ok := e.cache.Get(ctx, cacheKey); ok {
		var parsed analysisResponse
		if err := json.Unmarshal([]byte(cached), &parsed); err == nil {
			analysis = &parsed
			method = "cache"
			fromCache = true
			m.CacheHitsTotal.Inc()
			domainType = parsed.DomainType
			if domainType == "" {
				// Entry predates cached domains; keywords are close enough.
				domainType, _ = DetectDomainByKeywords(content)
			}
		} else {
			log.Printf("Warning: discarding corrupt cache entry %s: %v", cacheKey[:12], err)
			e.cache.Delete(ctx, cacheKey)
		}
	}
	if analysis == nil {
		m.CacheMissesTotal.Inc()

		domainType = e.detectDomain(ctx, content, req.CustomAPIKey)

		categories, err := e.store.CategoryNames(userID)
		if err != nil {
			log.Printf("Warning: could not load category names: %v", err)
		}
		suggested, err := e.learner.Suggest(userID, content)
		if err != nil {
			log.Printf("Warning: category suggestion lookup failed: %v", err)
		}

		analysis, err = e.analyzeSinglePass(ctx, content, domainType, categories, suggested, req.Context, req.CustomAPIKey)
		if err != nil {
			log.Printf("Single-pass analysis failed, falling back to segmentation: %v", err)
			analysis, err = e.analyzeMultiPass(ctx, content, domainType, categories, suggested, req.Context, req.CustomAPIKey)
			if err != nil {
				return nil, fmt.Errorf("analysis failed: %w", err)
			}
			method = "multi_pass"
		}

		analysis.DomainType = domainType
		if encoded, err := json.Marshal(analysis); err == nil {
			e.cache.Set(ctx, cacheKey, string(encoded))
		}
	}

	standardize(analysis)
	analysis.Concepts = dedupeConcepts(analysis.Concepts)
	if domainType == DomainTechnical && looksLikeProblemSolving(content) {
		analysis.Concepts = appendTechniqueConcepts(analysis.Concepts, content)
	}

	return e.persist(ctx, userID, content, req, analysis, method, domainType, fromCache)
}

// detectDomain uses keyword scoring first and asks the model only when the
// keywords are inconclusive.
func (e *Extractor) detectDomain(ctx context.Context, content, customKey string) string {
	domainType, conclusive := DetectDomainByKeywords(content)
	if conclusive {
		return domainType
	}

	answer, err := e.timedComplete(ctx, "classify", []llm.Message{
		{Role: "system", Content: "Classify content domains. Answer with exactly one word: TECHNICAL, NON_TECHNICAL or MIXED."},
		{Role: "user", Content: "Classify this content:\n\n" + truncateContent(content, 2000)},
	}, llm.Options{Temperature: 0, MaxTokens: 5, CustomAPIKey: customKey})
	if err != nil {
		log.Printf("Domain classification failed, assuming technical: %v", err)
		return DomainTechnical
	}

	switch strings.ToUpper(strings.TrimSpace(answer)) {
	case DomainNonTechnical:
		return DomainNonTechnical
	case DomainMixed:
		return DomainMixed
	}
	return DomainTechnical
}

func (e *Extractor) analyzeSinglePass(ctx context.Context, content, domainType string, categories []string, suggestedCategory, contextNote, customKey string) (*analysisResponse, error) {
	raw, err := e.timedComplete(ctx, "analysis", []llm.Message{
		{Role: "system", Content: analysisSystemPrompt(domainType)},
		{Role: "user", Content: analysisUserPrompt(content, categories, suggestedCategory, contextNote)},
	}, llm.Options{Temperature: analysisTemperature, JSONMode: true, CustomAPIKey: customKey})
	if err != nil {
		return nil, err
	}

	var analysis analysisResponse
	if err := json.Unmarshal([]byte(cleanJSONPayload(raw)), &analysis); err != nil {
		return nil, fmt.Errorf("analysis response was not valid JSON: %w", err)
	}
	if len(analysis.Concepts) == 0 {
		return nil, fmt.Errorf("analysis returned no concepts")
	}
	return &analysis, nil
}

// analyzeMultiPass splits the content into topical segments and analyzes each
// one separately, merging the results.
func (e *Extractor) analyzeMultiPass(ctx context.Context, content, domainType string, categories []string, suggestedCategory, contextNote, customKey string) (*analysisResponse, error) {
	segments := e.segment(ctx, content, customKey)

	merged := &analysisResponse{}
	for i, seg := range segments {
		analysis, err := e.analyzeSinglePass(ctx, seg, domainType, categories, suggestedCategory, contextNote, customKey)
		if err != nil {
			log.Printf("Segment %d/%d analysis failed: %v", i+1, len(segments), err)
			continue
		}
		if merged.ConversationTitle == "" {
			merged.ConversationTitle = analysis.ConversationTitle
		}
		if merged.ConversationSummary == "" {
			merged.ConversationSummary = analysis.ConversationSummary
		}
		merged.Concepts = append(merged.Concepts, analysis.Concepts...)
	}
	if len(merged.Concepts) == 0 {
		return nil, fmt.Errorf("no segment produced concepts")
	}
	return merged, nil
}

// segment asks the model to split content into 1-5 topical segments. Any
// invalid segmentation falls back to the whole text as one segment.
func (e *Extractor) segment(ctx context.Context, content, customKey string) []string {
	raw, err := e.timedComplete(ctx, "segment", []llm.Message{
		{Role: "system", Content: "You split long conversations into topical segments. " +
			`Return JSON: {"segments": [{"topic": "...", "text": "..."}]}. Use between 1 and 5 segments.`},
		{Role: "user", Content: "Split this conversation into topical segments:\n\n" + content},
	}, llm.Options{Temperature: 0, JSONMode: true, CustomAPIKey: customKey})
	if err != nil {
		log.Printf("Segmentation failed, analyzing whole text: %v", err)
		return []string{content}
	}

	var parsed struct {
		Segments []struct {
			Topic string `json:"topic"`
			Text  string `json:"text"`
		} `json:"segments"`
	}
	if err := json.Unmarshal([]byte(cleanJSONPayload(raw)), &parsed); err != nil {
		log.Printf("Segmentation response was not valid JSON, analyzing whole text: %v", err)
		return []string{content}
	}
	if len(parsed.Segments) == 0 || len(parsed.Segments) > maxSegments {
		return []string{content}
	}

	var segments []string
	for _, seg := range parsed.Segments {
		if strings.TrimSpace(seg.Text) != "" {
			segments = append(segments, seg.Text)
		}
	}
	if len(segments) == 0 {
		return []string{content}
	}
	return segments
}

// persist writes the conversation and folds the extracted concepts into the
// user's existing knowledge base.
func (e *Extractor) persist(ctx context.Context, userID int64, content string, req ExtractRequest, analysis *analysisResponse, method, domainType string, fromCache bool) (*ExtractResult, error) {
	title := req.Title
	if title == "" {
		title = analysis.ConversationTitle
	}
	if title == "" || title == "Untitled Conversation" {
		if generated, err := e.llm.GenerateTitle(ctx, content); err == nil {
			title = generated
		} else {
			log.Printf("Warning: title generation failed: %v", err)
			title = "Untitled Conversation"
		}
	}

	conversation := &store.Conversation{
		UserID:  userID,
		Title:   title,
		Summary: analysis.ConversationSummary,
		Source:  req.Source,
		Content: content,
	}
	if err := e.store.CreateConversation(conversation); err != nil {
		return nil, err
	}

	existing, err := e.store.GetConceptsWithEmbeddings(userID)
	if err != nil {
		return nil, err
	}
	learned, err := e.learner.LearnedMappings(userID)
	if err != nil {
		log.Printf("Warning: could not load learned category mappings: %v", err)
	}
	categoryNames, err := e.store.CategoryNames(userID)
	if err != nil {
		log.Printf("Warning: could not load category names: %v", err)
	}

	var saved []store.Concept
	for _, raw := range analysis.Concepts {
		concept := e.toConcept(userID, raw, categoryNames, learned, domainType)

		embedding, err := e.embed(ctx, concept.Title+": "+concept.Summary)
		if err != nil {
			log.Printf("Warning: embedding failed for concept %q: %v", concept.Title, err)
		}
		concept.Embedding = embedding

		target := MatchConcept(existing, concept.Title, embedding)
		if target != nil {
			MergeConcepts(target, concept)
			if err := e.store.UpdateConcept(target); err != nil {
				return nil, err
			}
			concept = target
		} else {
			if err := e.store.CreateConcept(concept); err != nil {
				return nil, err
			}
			existing = append(existing, *concept)
		}

		occ := &store.Occurrence{
			ConceptID:      concept.ID,
			ConversationID: conversation.ID,
			Snippet:        truncateContent(concept.Summary, 300),
			Confidence:     raw.ConfidenceScore,
		}
		if err := e.store.CreateOccurrence(occ); err != nil {
			log.Printf("Warning: could not record occurrence for %q: %v", concept.Title, err)
		}

		for _, snip := range raw.CodeSnippets {
			if strings.TrimSpace(snip.Code) == "" {
				continue
			}
			cs := &store.CodeSnippet{
				ConceptID:   concept.ID,
				Language:    snip.Language,
				Description: snip.Description,
				Code:        snip.Code,
			}
			if err := e.store.CreateCodeSnippet(cs); err != nil {
				log.Printf("Warning: could not save code snippet for %q: %v", concept.Title, err)
			}
		}

		saved = append(saved, *concept)
	}

	return &ExtractResult{
		Conversation: conversation,
		Concepts:     saved,
		Method:       method,
		DomainType:   domainType,
		FromCache:    fromCache,
	}, nil
}

func (e *Extractor) toConcept(userID int64, raw rawConcept, categoryNames []string, learned map[string]string, domainType string) *store.Concept {
	category := NormalizeCategory(raw.Category, categoryNames, learned, domainType)
	path := SplitCategoryPath(category)

	confidence := raw.ConfidenceScore
	if confidence <= 0 || confidence > 1 {
		confidence = defaultConceptConfidence
	}

	return &store.Concept{
		UserID:          userID,
		Title:           strings.TrimSpace(raw.Title),
		Category:        JoinCategoryPath(path),
		CategoryPath:    path,
		Summary:         raw.Summary,
		Details:         raw.Details,
		KeyPoints:       raw.KeyPoints,
		Examples:        raw.Examples,
		RelatedConcepts: raw.RelatedConcepts,
		KeyTakeaway:     raw.KeyTakeaway,
		Analogy:         raw.Analogy,
		PracticalTips:   raw.PracticalTips,
		ConfidenceScore: confidence,
		IsTechnique:     raw.IsTechnique,
	}
}

func (e *Extractor) embed(ctx context.Context, text string) ([]float32, error) {
	m := metrics.Get()
	start := time.Now()
	embedding, err := e.llm.GetEmbedding(ctx, text)
	m.LLMCallDuration.WithLabelValues("embedding").Observe(time.Since(start).Seconds())
	if err != nil {
		m.LLMCallsTotal.WithLabelValues("embedding", "error").Inc()
		return nil, err
	}
	m.LLMCallsTotal.WithLabelValues("embedding", "success").Inc()
	return embedding, nil
}

func (e *Extractor) timedComplete(ctx context.Context, purpose string, messages []llm.Message, opts llm.Options) (string, error) {
	m := metrics.Get()
	start := time.Now()
	out, err := e.llm.Complete(ctx, messages, opts)
	m.LLMCallDuration.WithLabelValues(purpose).Observe(time.Since(start).Seconds())
	if err != nil {
		m.LLMCallsTotal.WithLabelValues(purpose, "error").Inc()
		return "", err
	}
	m.LLMCallsTotal.WithLabelValues(purpose, "success").Inc()
	return out, nil
}

func truncateContent(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max]
}
