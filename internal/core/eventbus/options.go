package eventbus

import "github.com/dep2p/go-overlay/pkg/interfaces"

// 订阅/发射选项的包内别名，省去使用方多导一个包。

// BufSize 指定订阅通道容量
func BufSize(size int) interfaces.SubscriptionOpt {
	return interfaces.BufSize(size)
}

// Stateful 让发射器保留最后一条事件并补发给晚到的订阅者
func Stateful() interfaces.EmitterOpt {
	return interfaces.Stateful()
}
