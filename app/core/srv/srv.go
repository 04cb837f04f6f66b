package srv

import (
	"github.com/reverie-ai/reverie/pkg/ai"
)

type ApplyFunc func(*Srv)

type Srv struct {
	rbac       *RBACSrv
	reflect    ai.ReflectDriver
	transcribe ai.TranscribeDriver
	reflectCfg ReflectConfig
	tower      *Tower
}

func SetupSrvs(opts ...ApplyFunc) *Srv {
	a := &Srv{
		rbac: SetupRBACSrv(), // 角色鉴权
	}

	for _, opt := range opts {
		opt(a)
	}
	return a
}

func (s *Srv) RBAC() *RBACSrv {
	return s.rbac
}

func (s *Srv) Reflect() ai.ReflectDriver {
	return s.reflect
}

func (s *Srv) ReflectConfig() ReflectConfig {
	return s.reflectCfg
}

func (s *Srv) Transcribe() ai.TranscribeDriver {
	return s.transcribe
}

func (s *Srv) Tower() *Tower {
	return s.tower
}
