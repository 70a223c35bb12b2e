// Package assistant answers investor questions over their own imported data.
// Rows are pre-rendered into text chunks stored in Postgres; a question is
// answered by handing the most recent chunks to Gemini as grounding context.
package assistant

import (
	"context"
	"crypto/md5"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"strings"

	"go.uber.org/zap"
	"google.golang.org/genai"

	"github.com/calebrws/investor-portal/internal/entity"
)

const (
	chunkSize       = 10
	maxPromptChunks = 5
	maxChunkPreview = 500
)

const systemInstruction = `You are a helpful assistant that analyzes an investor's lead and enrollment data to answer their questions. Answer only from the data provided, in a clear, structured way. If the data does not contain the answer, say so.`

type Service struct {
	Client         *genai.Client
	Model          string
	ChunkRepo      entity.DataChunkRepositoryInterface
	ChatRepo       entity.ChatHistoryRepositoryInterface
	InvestorRepo   entity.InvestorRepositoryInterface
	LeadRepo       entity.LeadRepositoryInterface
	EnrollmentRepo entity.EnrollmentRepositoryInterface
	Log            *zap.Logger
}

func NewService(
	ctx context.Context,
	apiKey, model string,
	chunkRepo entity.DataChunkRepositoryInterface,
	chatRepo entity.ChatHistoryRepositoryInterface,
	investorRepo entity.InvestorRepositoryInterface,
	leadRepo entity.LeadRepositoryInterface,
	enrollmentRepo entity.EnrollmentRepositoryInterface,
	log *zap.Logger,
) (*Service, error) {
	client, err := genai.NewClient(ctx, &genai.ClientConfig{APIKey: apiKey})
	if err != nil {
		return nil, fmt.Errorf("initializing gemini client: %w", err)
	}

	return &Service{
		Client:         client,
		Model:          model,
		ChunkRepo:      chunkRepo,
		ChatRepo:       chatRepo,
		InvestorRepo:   investorRepo,
		LeadRepo:       leadRepo,
		EnrollmentRepo: enrollmentRepo,
		Log:            log,
	}, nil
}

// RefreshInvestorData rebuilds the stored chunks for one investor from the
// current leads and enrollments tables.
func (s *Service) RefreshInvestorData(ctx context.Context, investorID string) error {
	if err := s.refreshLeads(ctx, investorID); err != nil {
		return err
	}
	return s.refreshEnrollments(ctx, investorID)
}

// ProcessAllInvestorData refreshes chunks for every investor. Failures are
// logged per investor rather than aborting the sweep.
func (s *Service) ProcessAllInvestorData(ctx context.Context) error {
	investors, err := s.InvestorRepo.List(ctx)
	if err != nil {
		return err
	}

	var failed int
	for _, inv := range investors {
		if err := s.RefreshInvestorData(ctx, inv.ID); err != nil {
			failed++
			s.Log.Warn("assistant data refresh failed",
				zap.String("investor", inv.Name), zap.Error(err))
		}
	}
	if failed > 0 {
		return fmt.Errorf("refresh failed for %d of %d investors", failed, len(investors))
	}
	return nil
}

func (s *Service) refreshLeads(ctx context.Context, investorID string) error {
	leads, err := s.LeadRepo.List(ctx, entity.LeadFilter{InvestorID: investorID})
	if err != nil {
		return err
	}

	var records []string
	for _, l := range leads {
		records = append(records, fmt.Sprintf(
			"insured_name: %s\nlead_date: %s\nstatus: %s\ncost: %s\nnotes: %s\ninvestor_name: %s\n",
			l.InsuredName, l.LeadDate, l.Status, l.Cost.StringFixed(2), l.Notes, l.InvestorName))
	}
	return s.storeChunks(ctx, investorID, "leads", records)
}

func (s *Service) refreshEnrollments(ctx context.Context, investorID string) error {
	enrollments, err := s.EnrollmentRepo.ListByInvestor(ctx, investorID)
	if err != nil {
		return err
	}

	var records []string
	for _, e := range enrollments {
		name := ""
		if e.InvestorName != nil {
			name = *e.InvestorName
		}
		records = append(records, fmt.Sprintf(
			"insured_name: %s\nenrollment_date: %s\nlabor_cost: %s\nnotes: %s\ninvestor_name: %s\n",
			e.InsuredName, e.EnrollmentDate, e.LaborCost.StringFixed(2), e.Notes, name))
	}
	return s.storeChunks(ctx, investorID, "enrollments", records)
}

func (s *Service) storeChunks(ctx context.Context, investorID, dataType string, records []string) error {
	var chunks []*entity.DataChunk
	for start := 0; start < len(records); start += chunkSize {
		end := start + chunkSize
		if end > len(records) {
			end = len(records)
		}

		var b strings.Builder
		fmt.Fprintf(&b, "Data for %s (records %d-%d):\n\n", dataType, start+1, end)
		for _, rec := range records[start:end] {
			b.WriteString(rec)
			b.WriteString("\n")
		}
		text := b.String()

		sum := md5.Sum([]byte(text))
		meta, _ := json.Marshal(map[string]int{
			"chunk_size":  end - start,
			"start_index": start + 1,
		})
		chunks = append(chunks, entity.NewDataChunk(
			investorID, dataType, text, hex.EncodeToString(sum[:]), string(meta)))
	}

	if err := s.ChunkRepo.Replace(ctx, investorID, dataType, chunks); err != nil {
		return err
	}
	s.Log.Info("assistant chunks refreshed",
		zap.String("investor_id", investorID),
		zap.String("data_type", dataType),
		zap.Int("records", len(records)),
		zap.Int("chunks", len(chunks)))
	return nil
}

// Search answers a question against the investor's stored chunks and appends
// the exchange to their chat history.
func (s *Service) Search(ctx context.Context, investorID, query string) (*entity.ChatEntry, error) {
	chunks, err := s.ChunkRepo.ListByInvestor(ctx, investorID, []string{"leads", "enrollments"})
	if err != nil {
		return nil, err
	}
	if len(chunks) == 0 {
		return nil, fmt.Errorf("no processed data for investor %s", investorID)
	}

	prompt := buildSearchPrompt(query, chunks)

	chat, err := s.Client.Chats.Create(ctx, s.Model, &genai.GenerateContentConfig{
		SystemInstruction: &genai.Content{Parts: []*genai.Part{{Text: systemInstruction}}},
	}, nil)
	if err != nil {
		return nil, fmt.Errorf("starting chat: %w", err)
	}

	resp, err := chat.Send(ctx, &genai.Part{Text: prompt})
	if err != nil {
		return nil, fmt.Errorf("sending prompt: %w", err)
	}
	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil || len(resp.Candidates[0].Content.Parts) == 0 {
		return nil, fmt.Errorf("empty model response")
	}
	answer := resp.Candidates[0].Content.Parts[0].Text

	entry := entity.NewChatEntry(investorID, query, answer)
	if err := s.ChatRepo.Append(ctx, entry); err != nil {
		s.Log.Warn("failed to store chat history", zap.Error(err))
	}
	return entry, nil
}

func buildSearchPrompt(query string, chunks []*entity.DataChunk) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Based on the user query: %q\n\n", query)
	b.WriteString("Analyze the following data chunks and answer with the most relevant information. Focus on data that directly answers the question.\n\nData chunks:\n")

	for i, chunk := range chunks {
		if i == maxPromptChunks {
			break
		}
		text := chunk.ChunkText
		if r := []rune(text); len(r) > maxChunkPreview {
			text = string(r[:maxChunkPreview]) + "..."
		}
		fmt.Fprintf(&b, "Chunk %d: %s\n", i+1, text)
	}
	return b.String()
}

// History returns the most recent exchanges for an investor.
func (s *Service) History(ctx context.Context, investorID string, limit int) ([]*entity.ChatEntry, error) {
	return s.ChatRepo.ListByInvestor(ctx, investorID, limit)
}
