package darknet

import (
	"github.com/swdee/go-darknet/postprocess"
)

// The kinds below mirror the enums of darknet.h and share their integer
// codes.  darknet adds codes over time so decoding an unknown code reports
// ok=false rather than an error.

// LayerType wraps darknet's LAYER_TYPE
type LayerType int

const (
	Convolutional LayerType = iota
	Deconvolutional
	Connected
	MaxPool
	LocalAvgPool
	Softmax
	DetectionLayer
	Dropout
	Crop
	Route
	Cost
	Normalization
	AvgPool
	Local
	Shortcut
	ScaleChannels
	SAM
	Active
	RNN
	GRU
	LSTM
	ConvLSTM
	History
	CRNN
	BatchNorm
	NetworkLayer
	XNOR
	Region
	Yolo
	GaussianYolo
	ISeg
	Reorg
	ReorgOld
	Upsample
	Logxent
	L2Norm
	Empty
	Blank
	Contrastive
	Implicit
)

var layerTypeNames = []string{
	"convolutional", "deconvolutional", "connected", "maxpool",
	"local_avgpool", "softmax", "detection", "dropout", "crop", "route",
	"cost", "normalization", "avgpool", "local", "shortcut",
	"scale_channels", "sam", "active", "rnn", "gru", "lstm", "conv_lstm",
	"history", "crnn", "batchnorm", "network", "xnor", "region", "yolo",
	"gaussian_yolo", "iseg", "reorg", "reorg_old", "upsample", "logxent",
	"l2norm", "empty", "blank", "contrastive", "implicit",
}

// String returns the layer name as used in darknet cfg files
func (t LayerType) String() string {
	return kindName(layerTypeNames, int(t))
}

// IsOutput reports whether the layer type produces detections
func (t LayerType) IsOutput() bool {
	switch t {
	case DetectionLayer, Region, Yolo, GaussianYolo:
		return true
	default:
		return false
	}
}

// Activation wraps darknet's ACTIVATION
type Activation int

const (
	Logistic Activation = iota
	Relu
	Relu6
	Relie
	Linear
	Ramp
	Tanh
	Plse
	RevLeaky
	Leaky
	Elu
	Loggy
	Stair
	Hardtan
	Lhtan
	Selu
	Gelu
	Swish
	Mish
	HardMish
	NormChan
	NormChanSoftmax
	NormChanSoftmaxMaxval
)

var activationNames = []string{
	"logistic", "relu", "relu6", "relie", "linear", "ramp", "tanh", "plse",
	"revleaky", "leaky", "elu", "loggy", "stair", "hardtan", "lhtan", "selu",
	"gelu", "swish", "mish", "hard_mish", "normalize_channels",
	"normalize_channels_softmax", "normalize_channels_softmax_maxval",
}

// String returns the activation name as used in darknet cfg files
func (a Activation) String() string {
	return kindName(activationNames, int(a))
}

// CostType wraps darknet's COST_TYPE
type CostType int

const (
	CostSSE CostType = iota
	CostMasked
	CostL1
	CostSeg
	CostSmooth
	CostWGAN
)

var costTypeNames = []string{"sse", "masked", "L1", "seg", "smooth", "wgan"}

// String returns the cost type name
func (c CostType) String() string {
	return kindName(costTypeNames, int(c))
}

// WeightsType wraps darknet's WEIGHTS_TYPE_T
type WeightsType int

const (
	NoWeights WeightsType = iota
	PerFeature
	PerChannel
)

// String returns the weights type name
func (w WeightsType) String() string {
	switch w {
	case NoWeights:
		return "none"
	case PerFeature:
		return "per_feature"
	case PerChannel:
		return "per_channel"
	default:
		return "UNKNOW"
	}
}

// WeightsNormalization wraps darknet's WEIGHTS_NORMALIZATION_T
type WeightsNormalization int

const (
	NoNormalization WeightsNormalization = iota
	ReluNormalization
	SoftmaxNormalization
)

// String returns the weights normalization name
func (w WeightsNormalization) String() string {
	switch w {
	case NoNormalization:
		return "none"
	case ReluNormalization:
		return "relu"
	case SoftmaxNormalization:
		return "softmax"
	default:
		return "UNKNOW"
	}
}

// NMSKind wraps darknet's NMS_KIND
type NMSKind int

const (
	DefaultNMS NMSKind = iota
	GreedyNMS
	DIoUNMS
	CornersNMS
)

// String returns the NMS kind name
func (k NMSKind) String() string {
	switch k {
	case DefaultNMS:
		return "default"
	case GreedyNMS:
		return "greedynms"
	case DIoUNMS:
		return "diounms"
	case CornersNMS:
		return "cornersnms"
	default:
		return "UNKNOW"
	}
}

// ParseNMSKind converts a name returned by NMSKind.String, as written in
// darknet cfg files, back to the kind
func ParseNMSKind(name string) (NMSKind, bool) {
	for k := DefaultNMS; k <= CornersNMS; k++ {
		if k.String() == name {
			return k, true
		}
	}

	return 0, false
}

// filterKind returns the postprocess method implementing the NMS kind
func (k NMSKind) filterKind() postprocess.Kind {
	switch k {
	case GreedyNMS:
		return postprocess.KindGreedy
	case DIoUNMS:
		return postprocess.KindDIoU
	case CornersNMS:
		return postprocess.KindCorners
	default:
		return postprocess.KindDefault
	}
}

// YoloPoint wraps darknet's YOLO_POINT, the box reference point
type YoloPoint int

const (
	YoloCenter      YoloPoint = 1
	YoloLeftTop     YoloPoint = 2
	YoloRightBottom YoloPoint = 4
)

// String returns the yolo point name
func (p YoloPoint) String() string {
	switch p {
	case YoloCenter:
		return "center"
	case YoloLeftTop:
		return "left_top"
	case YoloRightBottom:
		return "right_bottom"
	default:
		return "UNKNOW"
	}
}

// IoULoss wraps darknet's IOU_LOSS
type IoULoss int

const (
	LossIoU IoULoss = iota
	LossGIoU
	LossMSE
	LossDIoU
	LossCIoU
)

// String returns the IoU loss name
func (l IoULoss) String() string {
	switch l {
	case LossIoU:
		return "iou"
	case LossGIoU:
		return "giou"
	case LossMSE:
		return "mse"
	case LossDIoU:
		return "diou"
	case LossCIoU:
		return "ciou"
	default:
		return "UNKNOW"
	}
}

// BinaryActivation wraps darknet's BINARY_ACTIVATION
type BinaryActivation int

const (
	BinaryMult BinaryActivation = iota
	BinaryAdd
	BinarySub
	BinaryDiv
)

// String returns the binary activation name
func (b BinaryActivation) String() string {
	switch b {
	case BinaryMult:
		return "mult"
	case BinaryAdd:
		return "add"
	case BinarySub:
		return "sub"
	case BinaryDiv:
		return "div"
	default:
		return "UNKNOW"
	}
}

// kindName looks up code in names
func kindName(names []string, code int) string {

	if code < 0 || code >= len(names) {
		return "UNKNOW"
	}

	return names[code]
}

// inRange reports whether code is a valid index of a kind with n members
func inRange(code, n int) bool {
	return code >= 0 && code < n
}

// decodeLayerType converts a darknet LAYER_TYPE code
func decodeLayerType(code int) (LayerType, bool) {
	if !inRange(code, len(layerTypeNames)) {
		return 0, false
	}
	return LayerType(code), true
}

// decodeActivation converts a darknet ACTIVATION code
func decodeActivation(code int) (Activation, bool) {
	if !inRange(code, len(activationNames)) {
		return 0, false
	}
	return Activation(code), true
}

// decodeCostType converts a darknet COST_TYPE code
func decodeCostType(code int) (CostType, bool) {
	if !inRange(code, len(costTypeNames)) {
		return 0, false
	}
	return CostType(code), true
}

// decodeWeightsType converts a darknet WEIGHTS_TYPE_T code
func decodeWeightsType(code int) (WeightsType, bool) {
	if !inRange(code, int(PerChannel)+1) {
		return 0, false
	}
	return WeightsType(code), true
}

// decodeWeightsNormalization converts a darknet WEIGHTS_NORMALIZATION_T code
func decodeWeightsNormalization(code int) (WeightsNormalization, bool) {
	if !inRange(code, int(SoftmaxNormalization)+1) {
		return 0, false
	}
	return WeightsNormalization(code), true
}

// decodeNMSKind converts a darknet NMS_KIND code
func decodeNMSKind(code int) (NMSKind, bool) {
	if !inRange(code, int(CornersNMS)+1) {
		return 0, false
	}
	return NMSKind(code), true
}

// decodeYoloPoint converts a darknet YOLO_POINT code
func decodeYoloPoint(code int) (YoloPoint, bool) {
	switch p := YoloPoint(code); p {
	case YoloCenter, YoloLeftTop, YoloRightBottom:
		return p, true
	default:
		return 0, false
	}
}

// decodeIoULoss converts a darknet IOU_LOSS code
func decodeIoULoss(code int) (IoULoss, bool) {
	if !inRange(code, int(LossCIoU)+1) {
		return 0, false
	}
	return IoULoss(code), true
}

// DecodeBinaryActivation converts a darknet BINARY_ACTIVATION code.  No
// layer field carries it, it is exported for callers reading cfg options
func DecodeBinaryActivation(code int) (BinaryActivation, bool) {
	if !inRange(code, int(BinaryDiv)+1) {
		return 0, false
	}
	return BinaryActivation(code), true
}
