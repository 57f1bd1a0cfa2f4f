package sim

// Key 逻辑按键
type Key uint8

const (
	KeyUp Key = iota
	KeyDown
	KeyLeft
	KeyRight
	KeyEnter
	KeySpace
	KeyEscape
)

var keyNames = map[string]Key{
	"up":     KeyUp,
	"down":   KeyDown,
	"left":   KeyLeft,
	"right":  KeyRight,
	"enter":  KeyEnter,
	"space":  KeySpace,
	"escape": KeyEscape,
}

// ParseKey 按名称解析按键（小写）
func ParseKey(name string) (Key, bool) {
	k, ok := keyNames[name]
	return k, ok
}

// KeySet 按键位集合
type KeySet uint16

func (s KeySet) Has(k Key) bool { return s&(1<<k) != 0 }

// With 返回加入 k 后的集合
func (s KeySet) With(k Key) KeySet { return s | 1<<k }

// Without 返回去掉 k 后的集合
func (s KeySet) Without(k Key) KeySet { return s &^ (1 << k) }

// Input 一帧的输入快照：本帧按下、持续按住、本帧松开
type Input struct {
	Pressed  KeySet
	Held     KeySet
	Released KeySet
}

func (in Input) WasPressed(k Key) bool  { return in.Pressed.Has(k) }
func (in Input) IsDown(k Key) bool      { return in.Held.Has(k) }
func (in Input) WasReleased(k Key) bool { return in.Released.Has(k) }
