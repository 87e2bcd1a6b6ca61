package scoring

import (
	"context"
	"errors"
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/robalobadob/tictactoe/internal/session"
)

type mockSink struct {
	mock.Mock
}

func (m *mockSink) ForceSetScore(ctx context.Context, userID int64, score int, surface session.Surface) error {
	args := m.Called(ctx, userID, score, surface)
	return args.Error(0)
}

func (m *mockSink) ReadHighScores(ctx context.Context, userID int64, surface session.Surface) ([]Record, error) {
	args := m.Called(ctx, userID, surface)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]Record), args.Error(1)
}

type fakeRecorder struct {
	entries []Entry
	err     error
}

func (f *fakeRecorder) Record(_ context.Context, e Entry) error {
	f.entries = append(f.entries, e)
	return f.err
}

var (
	chatSurface   = session.Surface{ChatID: 100, MessageID: 5}
	inlineSurface = session.Surface{InlineMessageID: "inl-1"}
)

func newTestService(t *testing.T, rec Recorder) (*Service, *mockSink, *session.Signer) {
	t.Helper()
	signer, err := session.NewSigner([]byte("scoring-secret"))
	require.NoError(t, err)
	sink := &mockSink{}
	svc, err := NewService(signer, sink, rec)
	require.NoError(t, err)
	svc.now = func() time.Time { return time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC) }
	return svc, sink, signer
}

func issue(t *testing.T, s *session.Signer, c session.Context) session.Signed {
	t.Helper()
	signed, err := s.Issue(c)
	require.NoError(t, err)
	return signed
}

func TestNewService_ValidatesDependencies(t *testing.T) {
	signer, err := session.NewSigner([]byte("k"))
	require.NoError(t, err)
	_, err = NewService(nil, &mockSink{}, nil)
	require.Error(t, err)
	_, err = NewService(signer, nil, nil)
	require.Error(t, err)
}

func TestSubmit_FloorsAndForwards(t *testing.T) {
	rec := &fakeRecorder{}
	svc, sink, signer := newTestService(t, rec)
	signed := issue(t, signer, session.Context{UserID: 9, Surface: chatSurface})

	sink.On("ForceSetScore", mock.Anything, int64(9), 7, chatSurface).Return(nil).Once()

	score, err := svc.Submit(context.Background(), signed.Payload, signed.Signature, 7.9)
	require.NoError(t, err)
	assert.Equal(t, 7, score)
	sink.AssertExpectations(t)

	require.Len(t, rec.entries, 1)
	assert.Equal(t, int64(9), rec.entries[0].UserID)
	assert.Equal(t, "chat:100:5", rec.entries[0].Surface)
	assert.Equal(t, 7, rec.entries[0].Score)
	assert.NotEmpty(t, rec.entries[0].ID)
}

func TestSubmit_ClampsNegativeToZero(t *testing.T) {
	svc, sink, signer := newTestService(t, nil)
	signed := issue(t, signer, session.Context{UserID: 9, Surface: inlineSurface})

	sink.On("ForceSetScore", mock.Anything, int64(9), 0, inlineSurface).Return(nil).Once()

	score, err := svc.Submit(context.Background(), signed.Payload, signed.Signature, -3.5)
	require.NoError(t, err)
	assert.Equal(t, 0, score)
	sink.AssertExpectations(t)
}

func TestSubmit_RejectsNonFinite(t *testing.T) {
	svc, sink, signer := newTestService(t, nil)
	signed := issue(t, signer, session.Context{UserID: 9, Surface: chatSurface})

	for _, v := range []float64{math.NaN(), math.Inf(1), math.Inf(-1)} {
		_, err := svc.Submit(context.Background(), signed.Payload, signed.Signature, v)
		assert.Equal(t, ErrorInvalidScore, CodeOf(err))
	}
	sink.AssertNotCalled(t, "ForceSetScore", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestSubmit_RejectsUnrepresentableScore(t *testing.T) {
	svc, sink, signer := newTestService(t, nil)
	signed := issue(t, signer, session.Context{UserID: 9, Surface: chatSurface})

	_, err := svc.Submit(context.Background(), signed.Payload, signed.Signature, 1e300)
	assert.Equal(t, ErrorInvalidScore, CodeOf(err))
	sink.AssertNotCalled(t, "ForceSetScore", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestSubmit_FlippedSignatureIsUnauthorized(t *testing.T) {
	rec := &fakeRecorder{}
	svc, sink, signer := newTestService(t, rec)
	signed := issue(t, signer, session.Context{UserID: 9, Surface: chatSurface})

	b := []byte(signed.Signature)
	if b[10] == 'a' {
		b[10] = 'b'
	} else {
		b[10] = 'a'
	}

	_, err := svc.Submit(context.Background(), signed.Payload, string(b), 1)
	require.Error(t, err)
	assert.Equal(t, ErrorUnauthorized, CodeOf(err))
	sink.AssertNotCalled(t, "ForceSetScore", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	assert.Empty(t, rec.entries)
}

func TestSubmit_SignedButMalformedPayload(t *testing.T) {
	svc, sink, signer := newTestService(t, nil)
	payload := "bm90LWpzb24" // "not-json"

	_, err := svc.Submit(context.Background(), payload, signer.Sign(payload), 1)
	assert.Equal(t, ErrorMalformedPayload, CodeOf(err))
	assert.ErrorIs(t, err, session.ErrMalformedPayload)
	sink.AssertNotCalled(t, "ForceSetScore", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestSubmit_SinkFailure(t *testing.T) {
	rec := &fakeRecorder{}
	svc, sink, signer := newTestService(t, rec)
	signed := issue(t, signer, session.Context{UserID: 9, Surface: chatSurface})
	boom := errors.New("telegram down")

	sink.On("ForceSetScore", mock.Anything, int64(9), 1, chatSurface).Return(boom).Once()

	_, err := svc.Submit(context.Background(), signed.Payload, signed.Signature, 1)
	assert.Equal(t, ErrorSinkUnavailable, CodeOf(err))
	assert.ErrorIs(t, err, boom)
	sink.AssertNumberOfCalls(t, "ForceSetScore", 1)
	assert.Empty(t, rec.entries)
}

func TestSubmit_LedgerFailureDoesNotFailSubmission(t *testing.T) {
	rec := &fakeRecorder{err: errors.New("disk full")}
	svc, sink, signer := newTestService(t, rec)
	signed := issue(t, signer, session.Context{UserID: 9, Surface: chatSurface})

	sink.On("ForceSetScore", mock.Anything, int64(9), 3, chatSurface).Return(nil).Once()

	score, err := svc.Submit(context.Background(), signed.Payload, signed.Signature, 3)
	require.NoError(t, err)
	assert.Equal(t, 3, score)
}

func TestHighScores(t *testing.T) {
	svc, sink, signer := newTestService(t, nil)
	signed := issue(t, signer, session.Context{UserID: 9, Surface: inlineSurface})
	rows := []Record{{Position: 1, UserID: 9, Name: "Ann", Score: 4}, {Position: 2, UserID: 3, Score: 1}}

	sink.On("ReadHighScores", mock.Anything, int64(9), inlineSurface).Return(rows, nil).Once()

	got, err := svc.HighScores(context.Background(), signed.Payload, signed.Signature)
	require.NoError(t, err)
	assert.Equal(t, rows, got)
	sink.AssertExpectations(t)
}

func TestHighScores_Errors(t *testing.T) {
	svc, sink, signer := newTestService(t, nil)
	signed := issue(t, signer, session.Context{UserID: 9, Surface: chatSurface})

	_, err := svc.HighScores(context.Background(), signed.Payload, "deadbeef")
	assert.Equal(t, ErrorUnauthorized, CodeOf(err))

	sink.On("ReadHighScores", mock.Anything, int64(9), chatSurface).Return(nil, errors.New("boom")).Once()
	_, err = svc.HighScores(context.Background(), signed.Payload, signed.Signature)
	assert.Equal(t, ErrorSinkUnavailable, CodeOf(err))
}

func TestHighScores_EmptyIsNotNil(t *testing.T) {
	svc, sink, signer := newTestService(t, nil)
	signed := issue(t, signer, session.Context{UserID: 9, Surface: chatSurface})

	sink.On("ReadHighScores", mock.Anything, int64(9), chatSurface).Return(nil, nil).Once()
	got, err := svc.HighScores(context.Background(), signed.Payload, signed.Signature)
	require.NoError(t, err)
	assert.NotNil(t, got)
	assert.Empty(t, got)
}

func TestError_Message(t *testing.T) {
	err := newError(ErrorUnauthorized, "bad_signature", nil)
	assert.Equal(t, "scoring: UNAUTHORIZED (bad_signature)", err.Error())
	assert.Equal(t, ErrorCode(""), CodeOf(errors.New("x")))
}
