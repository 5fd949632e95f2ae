// Package cvexp provides a small set of tools for experimenting with convolutional networks: a
// learning-rate decay schedule, a generator of synthetic image batches, and a VGG-style block of
// stacked convolutions.
//
// Schedules
//
// Learning-rate schedules map an epoch index and the current learning rate to the new learning
// rate. The standard one decays by a factor of 10 every 15 epochs:
//
//		lr, err := schedules.StepSchedule(epoch, lr)
//
// Schedules can also be configured and looked up by name, once the subpackage "schedules" has
// been imported:
//
//		s := schedules.Step().Gamma(0.5).Every(10)
//		s2, err := cvexp.NewSchedule("step")
//
// Synthetic batches
//
// Forward passes can be exercised without real data by generating a batch of random images,
// shaped (batch, width, height, channels), with integer pixel values in [0, 128):
//
//		x, err := synth.GenerateTestBatch(2, 32, 32)
//		x, err = synth.GenerateTestBatch(2, 32, 32, synth.WithChannels(1), synth.WithSeed(7))
//
// VGG blocks
//
// The VGG layer is built from a configuration listing groups of filter counts. Every filter count
// becomes a 3x3 convolution with a rectified-linear activation and no padding, and every group
// ends with a 2x2 max-pooling step:
//
//		l, err := vgg.New(vgg.Config{NFiltersConvBlocks: [][]int{{64, 64}, {128, 128}}})
//		if err != nil {
//			return err
//		}
//
//		y, err := l.Call(x)
//
// The convolution and pooling primitives themselves live in the subpackage "layers", and the
// n-dimensional arrays they operate on in "tensor". Both the VGG layer and the primitives satisfy
// the Layer interface defined here.
package cvexp
