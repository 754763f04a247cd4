package enum

// CommandType 表示購物車指令的種類
type CommandType string

const (
	CommandTypeAddProduct          CommandType = "add_product"
	CommandTypeRemoveProduct       CommandType = "remove_product"
	CommandTypeUpdateProductAmount CommandType = "update_product_amount"
)
