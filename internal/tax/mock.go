package tax

// MockClassifier is a test implementation of Classifier.
type MockClassifier struct {
	ClassifyFunc func(country, raw string) (ID, error)
}

// NewMockClassifier creates a mock that delegates to ClassifyID until
// ClassifyFunc is set.
func NewMockClassifier() *MockClassifier {
	return &MockClassifier{}
}

// Classify delegates to the configured function or ClassifyID.
func (m *MockClassifier) Classify(country, raw string) (ID, error) {
	if m.ClassifyFunc != nil {
		return m.ClassifyFunc(country, raw)
	}
	return ClassifyID(country, raw)
}

var (
	_ Classifier = Default{}
	_ Classifier = (*MockClassifier)(nil)
)
