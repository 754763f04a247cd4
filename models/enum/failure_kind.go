package enum

// FailureKind 表示購物車操作失敗的種類
type FailureKind string

const (
	FailureKindOutOfStock   FailureKind = "out_of_stock"
	FailureKindAddFailed    FailureKind = "add_failed"
	FailureKindRemoveFailed FailureKind = "remove_failed"
	FailureKindUpdateFailed FailureKind = "update_failed"
)

// Message returns the text shown to the shopper.
func (k FailureKind) Message() string {
	switch k {
	case FailureKindOutOfStock:
		return "Quantidade solicitada fora de estoque"
	case FailureKindAddFailed:
		return "Erro na adição do produto"
	case FailureKindRemoveFailed:
		return "Erro na remoção do produto"
	case FailureKindUpdateFailed:
		return "Erro na alteração de quantidade do produto"
	default:
		return string(k)
	}
}
