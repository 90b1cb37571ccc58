package enum

// 单个页面的处理结果
const (
	PageStatePending = 0
	PageStateSuccess = 1
	PageStateFail    = 2
)

// domain在一次运行中的状态，Done/Failed为终态
type DomainState uint8

const (
	DomainStatePending DomainState = iota
	DomainStateInProgress
	DomainStateDone
	DomainStateFailed
)

func (s DomainState) String() string {
	switch s {
	case DomainStatePending:
		return "pending"
	case DomainStateInProgress:
		return "in_progress"
	case DomainStateDone:
		return "done"
	case DomainStateFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// 下载失败的分类，决定controller是跳过页面还是终止整个domain
type FailKind uint8

const (
	FailNone        FailKind = iota
	FailUnreachable          // dns失败、连接被拒绝
	FailTransient            // 超时、连接重置、5xx
	FailRejected             // 4xx
	FailParse                // 非html、body读取或解析失败
)

func (k FailKind) String() string {
	switch k {
	case FailNone:
		return "none"
	case FailUnreachable:
		return "unreachable"
	case FailTransient:
		return "transient"
	case FailRejected:
		return "rejected"
	case FailParse:
		return "parse"
	default:
		return "unknown"
	}
}

const (
	DefaultBatchSize       = 50
	DefaultMaxPages        = 100
	DefaultDomainTimeout   = 300
	DefaultWorker          = 4
	DefaultDownloadTimeout = 30
	DefaultMaxBodySize     = 10 * 1024 * 1024
	DefaultUserAgent       = "Mozilla/5.0 (compatible; domaincrawler/0.2)"
)
